package main

import (
	"context"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/xh3b4sd/tracer"
	"go.uber.org/zap"

	"github.com/xh3b4sd/mushroom/batch"
	"github.com/xh3b4sd/mushroom/matrix"
	"github.com/xh3b4sd/mushroom/store"
)

var (
	transformCSV string
	transformOut string
)

func transformCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       runTransform,
		UsageLine: "transform -csv <file> [options]",
		Short:     "transforms observations with a stored preprocessor",
		Long: `
transforms observations with a stored preprocessor and optionally writes the
design matrix, labels last if the target column is present

	$ mushroom transform -csv sample.csv -schema parameters.json -out matrix.csv
`,
		Flag: *flag.NewFlagSet("transform", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&transformCSV, "csv", "", "Input data CSV file")
	cmd.Flag.StringVar(&transformOut, "out", "", "Output CSV file of the dense design matrix")
	common(&cmd.Flag)
	return cmd
}

func runTransform(cmd *commander.Command, args []string) error {
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

	pre, err := store.Load(ctx, sto, name, log)
	if err != nil {
		return tracer.Mask(err)
	}

	sch, err := readSchema()
	if err != nil {
		return tracer.Mask(err)
	}

	inp, err := readCSV(transformCSV, sch)
	if err != nil {
		return tracer.Mask(err)
	}

	X, lab, err := pre.Transform(inp)
	if err != nil {
		return tracer.Mask(err)
	}

	r, c := X.Dims()
	log.Info(
		"transformed input",
		zap.Int("input", inp.Rows()),
		zap.Int("rows", r),
		zap.Int("columns", c),
		zap.Int("nonzero", X.NNZ()),
		zap.Bool("labels", lab != nil),
	)

	if transformOut == "" {
		return nil
	}

	out, err := design(X, pre.FeatureNames(), lab)
	if err != nil {
		return tracer.Mask(err)
	}

	fil, err := os.Create(transformOut)
	if err != nil {
		return tracer.Mask(err)
	}

	{
		err := batch.CSV{Com: ','}.Write(fil, out)
		if err != nil {
			fil.Close()
			return tracer.Mask(err)
		}
	}

	{
		err := fil.Close()
		if err != nil {
			return tracer.Mask(err)
		}
	}

	return nil
}

// design turns the design matrix into a batch with one numeric column per
// feature, and the labels as trailing text column.
func design(X *matrix.CSR, nam []string, lab []string) (*batch.Batch, error) {
	r, c := X.Dims()

	var col []*batch.Column
	for j := 0; j < c; j++ {
		val := make([]float64, r)
		for i := 0; i < r; i++ {
			val[i] = X.At(i, j)
		}

		col = append(col, batch.NewNumeric(nam[j], val))
	}

	if lab != nil {
		col = append(col, batch.NewText("label", lab, nil))
	}

	b, err := batch.New(col...)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	return b, nil
}
