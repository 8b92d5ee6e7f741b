package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"text/template"
	"time"

	"github.com/xh3b4sd/tracer"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

type Loader struct {
	Add string
	Cli *http.Client
	Cmd *exec.Cmd
	Fil *os.File
	Log *zap.Logger
	// Pat is the required path of the CatBoost model artefact, originally
	// saved via the "save_model" Python API of CatBoost.
	//
	//	model.save_model("mushroom.cbm")
	Pat string
	// Por is the required free port number used to run a simple HTTP server in
	// Python for serving predictions between processes.
	Por int
	// Pyt is the Python interpreter executing the rendered template, python3
	// by default.
	Pyt string
	// Tem is the Python script template that is first being rendered and
	// persisted, and then executed in a child process. The default template
	// serves CatBoost predictions.
	Tem string
	Url string
	// Wai is the maximum duration Restore waits for the child process to
	// become ready.
	Wai time.Duration
}

type request struct {
	Rows [][]float64 `json:"rows"`
}

type response struct {
	Labels []string `json:"labels"`
}

// Restore renders the template, spawns the child process and blocks until the
// child process serves requests. A child process that does not become ready
// in time is killed before Restore returns.
func (l *Loader) Restore(ctx context.Context) error {
	var err error

	{
		l.configs()
	}

	{
		err := artefact(l.Pat)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	{
		l.Fil, err = os.CreateTemp("", "mushroom-loader-template-*.py")
		if err != nil {
			return tracer.Mask(err)
		}
	}

	var byt []byte
	{
		byt, err = l.render()
		if err != nil {
			return tracer.Mask(err)
		}
	}

	{
		_, err := l.Fil.Write(byt)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	{
		err := l.Fil.Close()
		if err != nil {
			return tracer.Mask(err)
		}
	}

	{
		l.Cmd = exec.Command(l.Pyt, l.Fil.Name())
	}

	{
		err := l.Cmd.Start()
		if err != nil {
			os.Remove(l.Fil.Name())
			return tracer.Mask(err)
		}
	}

	go func() {
		err := l.Cmd.Wait()
		if err != nil {
			l.Log.Info("child process exited", zap.String("file", l.Fil.Name()), zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, l.Wai)
	defer cancel()

	tic := time.NewTicker(500 * time.Millisecond)
	defer tic.Stop()

	for {
		if l.checker(ctx) {
			break
		}

		select {
		case <-ctx.Done():
			{
				err := l.Sigkill()
				if err != nil {
					l.Log.Error("failed to stop child process", zap.Error(err))
				}
			}

			return tracer.Maskf(executionFailedError, "child process not ready after %s", l.Wai)
		case <-tic.C:
		}
	}

	l.Log.Debug("child process ready", zap.String("url", l.Url), zap.String("model", l.Pat))

	return nil
}

// Predict forwards the rows of X to the child process and returns one class
// label per row.
func (l *Loader) Predict(ctx context.Context, X mat.Matrix) ([]string, error) {
	var err error

	r, c := X.Dims()
	if r == 0 {
		return nil, nil
	}

	inp := request{Rows: make([][]float64, r)}
	for i := 0; i < r; i++ {
		inp.Rows[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			inp.Rows[i][j] = X.At(i, j)
		}
	}

	var byt []byte
	{
		byt, err = json.Marshal(inp)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	var req *http.Request
	{
		req, err = http.NewRequestWithContext(ctx, "POST", l.Url, bytes.NewBuffer(byt))
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	{
		req.Header.Set("Content-Type", "application/json")
	}

	var res *http.Response
	{
		res, err = l.Cli.Do(req)
		if err != nil {
			return nil, tracer.Mask(err)
		}
		defer res.Body.Close()
	}

	var bod []byte
	{
		bod, err = io.ReadAll(res.Body)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	if res.StatusCode != http.StatusOK {
		return nil, tracer.Maskf(executionFailedError, "child process responded %d: %s", res.StatusCode, strings.TrimSpace(string(bod)))
	}

	var out response
	{
		err = json.Unmarshal(bod, &out)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	if len(out.Labels) != r {
		return nil, tracer.Maskf(executionFailedError, "expected %d labels, got %d", r, len(out.Labels))
	}

	return out.Labels, nil
}

// Sigkill shuts down the child process and removes the rendered template.
func (l *Loader) Sigkill() error {
	if l.Cmd == nil || l.Cmd.Process == nil {
		return nil
	}

	{
		err := l.Cmd.Process.Kill()
		if err != nil && !IsProcessAlreadyFinished(err) {
			return tracer.Mask(err)
		}
	}

	{
		os.Remove(l.Fil.Name())
	}

	return nil
}

func (l *Loader) checker(ctx context.Context) bool {
	var err error

	var req *http.Request
	{
		req, err = http.NewRequestWithContext(ctx, "GET", l.Url, nil)
		if err != nil {
			panic(err)
		}
	}

	var res *http.Response
	{
		res, err = l.Cli.Do(req)
		if err != nil {
			return false
		}
		defer res.Body.Close()
	}

	var bod []byte
	{
		bod, err = io.ReadAll(res.Body)
		if err != nil {
			return false
		}
	}

	return strings.TrimSpace(string(bod)) == "OK"
}

func (l *Loader) configs() {
	if l.Add == "" {
		l.Add = "localhost"
	}

	if l.Cli == nil {
		l.Cli = &http.Client{Timeout: 10 * time.Second}
	}

	if l.Log == nil {
		l.Log = zap.NewNop()
	}

	if l.Pat == "" {
		panic("Loader.Pat must not be empty")
	}

	if l.Por == 0 {
		panic("Loader.Por must not be empty")
	}

	if l.Pyt == "" {
		l.Pyt = "python3"
	}

	if l.Tem == "" {
		l.Tem = deftem
	}

	if l.Url == "" {
		l.Url = fmt.Sprintf("http://%s:%d", l.Add, l.Por)
	}

	if l.Wai == 0 {
		l.Wai = time.Minute
	}
}

func (l *Loader) data() map[string]interface{} {
	return map[string]interface{}{
		"Add": l.Add,
		"Pat": l.Pat,
		"Por": l.Por,
	}
}

func (l *Loader) render() ([]byte, error) {
	var buf bytes.Buffer
	{
		t, err := template.New("loader").Parse(l.Tem)
		if err != nil {
			return nil, tracer.Mask(err)
		}

		err = t.Execute(&buf, l.data())
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	return buf.Bytes(), nil
}
