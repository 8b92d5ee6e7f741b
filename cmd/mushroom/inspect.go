package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/xh3b4sd/tracer"

	"github.com/xh3b4sd/mushroom/preprocessor"
	"github.com/xh3b4sd/mushroom/store"
)

func inspectCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       runInspect,
		UsageLine: "inspect [options]",
		Short:     "prints roles, categories and scaler statistics of a stored state",
		Long: `
prints roles, categories and scaler statistics of a stored state, and lists
all stored states

	$ mushroom inspect -name latest
`,
		Flag: *flag.NewFlagSet("inspect", flag.ExitOnError),
	}
	common(&cmd.Flag)
	return cmd
}

func runInspect(cmd *commander.Command, args []string) error {
	ctx := context.Background()

	log, err := logger()
	if err != nil {
		return tracer.Mask(err)
	}
	defer log.Sync()

	sto, err := store.Open(ctx)
	if err != nil {
		return tracer.Mask(err)
	}

	nam, err := store.Names(ctx, sto)
	if err != nil {
		return tracer.Mask(err)
	}

	pre, err := store.Load(ctx, sto, name, log)
	if err != nil {
		return tracer.Mask(err)
	}

	{
		err := describe(os.Stdout, nam, pre)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	return nil
}

func describe(w io.Writer, nam []string, pre *preprocessor.Preprocessor) error {
	tab := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tab, "stored\t%s\n", strings.Join(nam, " "))
	fmt.Fprintf(tab, "width\t%d\n", pre.Width())
	fmt.Fprintln(tab)

	mea, std, cat := pre.Stats()

	for i, c := range pre.Continuous() {
		fmt.Fprintf(tab, "%s\t%s\tmean=%g\tstd=%g\n", preprocessor.Continuous, c, mea[i], std[i])
	}

	for i, c := range pre.Categorical() {
		fmt.Fprintf(tab, "%s\t%s\t%s\t\n", preprocessor.Categorical, c, strings.Join(cat[i], " "))
	}

	return tab.Flush()
}
