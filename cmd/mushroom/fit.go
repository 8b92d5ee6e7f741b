package main

import (
	"context"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/xh3b4sd/tracer"
	"go.uber.org/zap"

	"github.com/xh3b4sd/mushroom/guide"
	"github.com/xh3b4sd/mushroom/preprocessor"
	"github.com/xh3b4sd/mushroom/store"
)

var (
	fitCSV    string
	fitGuide  string
	fitImpute string
	fitTarget string
)

func fitCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       runFit,
		UsageLine: "fit -csv <file> [options]",
		Short:     "fits the preprocessor on reference data and stores its state",
		Long: `
fits the preprocessor on reference data and stores its state

	$ mushroom fit -csv dataset.csv -schema parameters.json -guide guide.json -target class

The store driver is selected via MUSHROOM_STORE_DRIVER.
`,
		Flag: *flag.NewFlagSet("fit", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&fitCSV, "csv", "", "Reference data CSV file")
	cmd.Flag.StringVar(&fitGuide, "guide", "", "Reference guide file providing valid values")
	cmd.Flag.StringVar(&fitImpute, "impute", "batch", "Imputation policy: batch or fitted")
	cmd.Flag.StringVar(&fitTarget, "target", "class", "Target column, empty for none")
	common(&cmd.Flag)
	return cmd
}

func imputation(s string) (preprocessor.Imputation, error) {
	switch s {
	case "batch":
		return preprocessor.ImputeBatch, nil
	case "fitted":
		return preprocessor.ImputeFitted, nil
	}

	return 0, tracer.Maskf(invalidFlagError, "-impute must be batch or fitted, got %q", s)
}

func runFit(cmd *commander.Command, args []string) error {
	ctx := context.Background()

	log, err := logger()
	if err != nil {
		return tracer.Mask(err)
	}
	defer log.Sync()

	con := preprocessor.Config{
		Log: log,
		Tar: fitTarget,
	}

	con.Imp, err = imputation(fitImpute)
	if err != nil {
		return tracer.Mask(err)
	}

	sch, err := readSchema()
	if err != nil {
		return tracer.Mask(err)
	}
	if sch != nil {
		con.Col = sch.Names()
	}

	if fitGuide != "" {
		gui, err := guide.ReadFile(fitGuide)
		if err != nil {
			return tracer.Mask(err)
		}

		con.Val = gui.ValidValues()
		log.Info("loaded guide", zap.String("version", gui.Version()))
	}

	ref, err := readCSV(fitCSV, sch)
	if err != nil {
		return tracer.Mask(err)
	}

	pre, err := preprocessor.New(con)
	if err != nil {
		return tracer.Mask(err)
	}

	{
		_, err := pre.Fit(ref)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	sto, err := store.Open(ctx)
	if err != nil {
		return tracer.Mask(err)
	}

	{
		err := store.Save(ctx, sto, name, pre)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	log.Info(
		"stored fitted state",
		zap.String("driver", string(sto.Driver())),
		zap.String("name", name),
		zap.Int("rows", ref.Rows()),
		zap.Strings("continuous", pre.Continuous()),
		zap.Strings("categorical", pre.Categorical()),
		zap.Int("width", pre.Width()),
	)

	return nil
}
