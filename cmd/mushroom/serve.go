package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/xh3b4sd/tracer"
	"go.uber.org/zap"

	"github.com/xh3b4sd/mushroom/guide"
	"github.com/xh3b4sd/mushroom/loader"
	"github.com/xh3b4sd/mushroom/server"
	"github.com/xh3b4sd/mushroom/store"
)

var (
	serveAddr   string
	serveGuide  string
	serveModel  string
	servePort   int
	servePython string
)

func serveCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       runServe,
		UsageLine: "serve -model <file> [options]",
		Short:     "serves edibility predictions over HTTP",
		Long: `
serves edibility predictions over HTTP, using a stored preprocessor state and a
CatBoost model restored in a Python child process

	$ mushroom serve -model mushroom.cbm -schema parameters.json -guide guide.json

	$ curl -s localhost:8080/predict -d '{"fields": {"cap-diameter": 4.2, ...}}'
`,
		Flag: *flag.NewFlagSet("serve", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	cmd.Flag.StringVar(&serveGuide, "guide", "", "Reference guide file translating display values")
	cmd.Flag.StringVar(&serveModel, "model", "", "CatBoost model file")
	cmd.Flag.IntVar(&servePort, "port", 8791, "Free local port of the Python child process")
	cmd.Flag.StringVar(&servePython, "python", "python3", "Python interpreter with catboost installed")
	common(&cmd.Flag)
	return cmd
}

func runServe(cmd *commander.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logger()
	if err != nil {
		return tracer.Mask(err)
	}
	defer log.Sync()

	if serveModel == "" {
		return tracer.Maskf(invalidFlagError, "-model must not be empty")
	}

	sto, err := store.Open(ctx)
	if err != nil {
		return tracer.Mask(err)
	}

	pre, err := store.Load(ctx, sto, name, log)
	if err != nil {
		return tracer.Mask(err)
	}

	con := server.Config{
		Log: log,
		Pre: pre,
	}

	con.Sch, err = readSchema()
	if err != nil {
		return tracer.Mask(err)
	}

	if serveGuide != "" {
		gui, err := guide.ReadFile(serveGuide)
		if err != nil {
			return tracer.Mask(err)
		}

		con.Gui = gui
		log.Info("loaded guide", zap.String("version", gui.Version()))
	}

	lod := &loader.Loader{
		Log: log,
		Pat: serveModel,
		Por: servePort,
		Pyt: servePython,
	}

	{
		err := lod.Restore(ctx)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	defer func() {
		err := lod.Sigkill()
		if err != nil {
			log.Error("failed to stop child process", zap.Error(err))
		}
	}()

	con.Cla = lod

	han, err := server.New(con)
	if err != nil {
		return tracer.Mask(err)
	}

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           han,
		ReadHeaderTimeout: 5 * time.Second,
	}

	fai := make(chan error, 1)
	go func() {
		log.Info("serving predictions", zap.String("addr", serveAddr), zap.String("state", name))
		fai <- srv.ListenAndServe()
	}()

	select {
	case err := <-fai:
		if !errors.Is(err, http.ErrServerClosed) {
			return tracer.Mask(err)
		}
	case <-ctx.Done():
	}

	shu, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	{
		err := srv.Shutdown(shu)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	return nil
}
