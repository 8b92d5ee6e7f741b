// Package server serves predictions for single form submissions over HTTP.
//
//	POST /predict   {"fields": {"cap-diameter": 4.2, "cap-shape": "Convex", ...}}
//	GET  /healthz
//	GET  /metrics
package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/xh3b4sd/tracer"
	"go.uber.org/zap"

	"github.com/xh3b4sd/mushroom"
	"github.com/xh3b4sd/mushroom/batch"
	"github.com/xh3b4sd/mushroom/metrics"
	"github.com/xh3b4sd/mushroom/schema"
)

// Incomplete is the message returned for every submission the preprocessor
// cannot turn into a valid design matrix row.
const Incomplete = "complete all mushroom fields"

var verdicts = map[string]string{
	"e": "edible",
	"p": "poisonous",
}

type Config struct {
	Cla mushroom.Classifier
	// Gui is optional. Without a guide, submissions must carry raw codes.
	Gui mushroom.Guide
	Log *zap.Logger
	Met *metrics.Metrics
	Pre mushroom.Preprocessor
	// Sch is optional. With a schema, incomplete submissions are rejected
	// before transformation and fields follow the declared order.
	Sch *schema.Schema
}

type Server struct {
	con Config
	mux *http.ServeMux
}

type Request struct {
	Fields map[string]any `json:"fields"`
}

type Response struct {
	Error   string   `json:"error,omitempty"`
	Label   string   `json:"label,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Verdict string   `json:"verdict,omitempty"`
}

func New(c Config) (*Server, error) {
	if c.Cla == nil {
		return nil, tracer.Maskf(invalidConfigError, "Config.Cla must not be empty")
	}
	if c.Pre == nil {
		return nil, tracer.Maskf(invalidConfigError, "Config.Pre must not be empty")
	}
	if c.Log == nil {
		c.Log = zap.NewNop()
	}
	if c.Met == nil {
		c.Met = metrics.New()
	}

	s := &Server{
		con: c,
		mux: http.NewServeMux(),
	}

	s.mux.HandleFunc("/healthz", s.healthz)
	s.mux.HandleFunc("/predict", s.predict)
	s.mux.Handle("/metrics", c.Met.Handler())

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("OK\n"))
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.respond(w, http.StatusMethodNotAllowed, Response{Error: "method not allowed"})
		return
	}

	var req Request
	{
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()

		err := dec.Decode(&req)
		if err != nil {
			s.respond(w, http.StatusBadRequest, Response{Error: "invalid request body"})
			return
		}
	}

	if s.con.Sch != nil {
		mis := s.con.Sch.Incomplete(req.Fields)
		if len(mis) != 0 {
			s.con.Log.Info("rejected incomplete submission", zap.Strings("missing", mis))
			s.respond(w, http.StatusUnprocessableEntity, Response{Error: Incomplete, Missing: mis})
			return
		}
	}

	fie := req.Fields
	if s.con.Gui != nil {
		var err error

		sta := time.Now()
		fie, err = s.con.Gui.Translate(req.Fields)
		if err != nil {
			s.con.Met.Observe(metrics.OpTransform, sta, err)
			s.con.Log.Info("rejected untranslatable submission", zap.Error(err))
			s.respond(w, http.StatusUnprocessableEntity, Response{Error: Incomplete})
			return
		}
	}

	inp, err := batch.FromRecords(s.names(fie), []map[string]any{fie})
	if err != nil {
		s.con.Log.Info("rejected malformed submission", zap.Error(err))
		s.respond(w, http.StatusUnprocessableEntity, Response{Error: Incomplete})
		return
	}

	var lab []string
	{
		sta := time.Now()

		X, _, err := s.con.Pre.Transform(inp)
		s.con.Met.Observe(metrics.OpTransform, sta, err)
		if err != nil {
			s.con.Log.Info("rejected invalid submission", zap.String("outcome", metrics.Outcome(err)), zap.Error(err))
			s.respond(w, http.StatusUnprocessableEntity, Response{Error: Incomplete})
			return
		}

		row, _ := X.Dims()
		s.con.Met.Rows(inp.Rows(), row)

		sta = time.Now()
		lab, err = s.con.Cla.Predict(r.Context(), X)
		s.con.Met.Observe(metrics.OpPredict, sta, err)
		if err != nil {
			s.con.Log.Error("classifier failed", zap.Error(err))
			s.respond(w, http.StatusBadGateway, Response{Error: "classifier unavailable"})
			return
		}
	}

	if len(lab) != 1 {
		s.con.Log.Error("classifier returned unexpected labels", zap.Int("labels", len(lab)))
		s.respond(w, http.StatusBadGateway, Response{Error: "classifier unavailable"})
		return
	}

	s.con.Met.Labels(lab)
	s.con.Log.Info("served prediction", zap.String("label", lab[0]))

	s.respond(w, http.StatusOK, Response{Label: lab[0], Verdict: verdicts[lab[0]]})
}

// names returns the schema's field order, or the sorted submission keys
// without a schema.
func (s *Server) names(fie map[string]any) []string {
	if s.con.Sch != nil {
		return s.con.Sch.Names()
	}

	var nam []string
	for k := range fie {
		nam = append(nam, k)
	}
	sort.Strings(nam)

	return nam
}

func (s *Server) respond(w http.ResponseWriter, cod int, res Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(cod)

	err := json.NewEncoder(w).Encode(res)
	if err != nil {
		s.con.Log.Error("failed to write response", zap.Error(err))
	}
}
