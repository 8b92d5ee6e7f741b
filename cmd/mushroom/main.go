package main

import (
	"fmt"
	"os"

	"github.com/gonuts/commander"
)

var cmd = &commander.Command{
	UsageLine: os.Args[0],
	Short:     "preprocesses mushroom observations and serves edibility predictions",
}

func init() {
	cmd.Subcommands = []*commander.Command{
		fitCmd(),
		inspectCmd(),
		serveCmd(),
		transformCmd(),
	}
}

func main() {
	err := cmd.Dispatch(os.Args[1:])
	if err != nil {
		fmt.Printf("**err**: %v\n", err)
		os.Exit(1)
	}
}
