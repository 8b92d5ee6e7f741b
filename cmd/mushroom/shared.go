package main

import (
	"bytes"
	"os"
	"unicode/utf8"

	"github.com/gonuts/flag"
	"github.com/xh3b4sd/tracer"
	"go.uber.org/zap"

	"github.com/xh3b4sd/mushroom/batch"
	"github.com/xh3b4sd/mushroom/schema"
)

var (
	debug      bool
	name       string
	schemaPath string
	separator  string
)

// common registers the flags every subcommand understands.
func common(f *flag.FlagSet) {
	f.BoolVar(&debug, "debug", false, "Log at debug level in development format")
	f.StringVar(&name, "name", "latest", "Name of the stored preprocessor state")
	f.StringVar(&schemaPath, "schema", "", "Form schema file, e.g. parameters.json")
	f.StringVar(&separator, "sep", ";", "CSV field delimiter")
}

func logger() (*zap.Logger, error) {
	var log *zap.Logger
	var err error

	if debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, tracer.Mask(err)
	}

	return log, nil
}

// readSchema returns nil without a configured schema file.
func readSchema() (*schema.Schema, error) {
	if schemaPath == "" {
		return nil, nil
	}

	sch, err := schema.ReadFile(schemaPath)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	return sch, nil
}

// readCSV forces the column kinds declared by sch, if any.
func readCSV(pat string, sch *schema.Schema) (*batch.Batch, error) {
	if pat == "" {
		return nil, tracer.Maskf(invalidFlagError, "-csv must not be empty")
	}

	com, siz := utf8.DecodeRuneInString(separator)
	if siz == 0 || siz != len(separator) {
		return nil, tracer.Maskf(invalidFlagError, "-sep must be a single character")
	}

	byt, err := os.ReadFile(pat)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	c := batch.CSV{Com: com}
	if sch != nil {
		c.Kin = sch.Kinds()
	}

	b, err := c.Read(bytes.NewReader(byt))
	if err != nil {
		return nil, tracer.Mask(err)
	}

	return b, nil
}
