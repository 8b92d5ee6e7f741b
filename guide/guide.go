// Package guide implements the reference guide lookup translating the display
// values of a form submission into the raw codes of the training data. A
// guide file is versioned JSON.
//
//	{
//	    "version": "2024-05",
//	    "features": {
//	        "cap-shape": {"Convex": "x", "Bell": "b"},
//	        "has-ring": {"true": "t", "false": "f"}
//	    }
//	}
package guide

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/xh3b4sd/tracer"
)

type Config struct {
	// Fea maps feature name to display value to raw code.
	Fea map[string]map[string]string `json:"features"`
	Ver string                       `json:"version"`
}

type Guide struct {
	fea map[string]map[string]string
	ver string
}

func New(c Config) (*Guide, error) {
	if c.Ver == "" {
		return nil, tracer.Maskf(invalidConfigError, "Guide.Ver must not be empty")
	}

	fea := map[string]map[string]string{}
	for f, m := range c.Fea {
		cop := map[string]string{}
		for k, v := range m {
			if v == "" {
				return nil, tracer.Maskf(invalidConfigError, "code for %q of %q must not be empty", k, f)
			}
			cop[k] = v
		}
		fea[f] = cop
	}

	g := &Guide{
		fea: fea,
		ver: c.Ver,
	}

	return g, nil
}

func Read(r io.Reader) (*Guide, error) {
	var c Config
	{
		err := json.NewDecoder(r).Decode(&c)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	g, err := New(c)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	return g, nil
}

func ReadFile(pat string) (*Guide, error) {
	byt, err := os.ReadFile(pat)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	g, err := Read(bytes.NewReader(byt))
	if err != nil {
		return nil, tracer.Mask(err)
	}

	return g, nil
}

// Code translates the display value val of feature fea. Numbers are returned
// unchanged. Values of features the guide does not cover pass through as
// strings.
func (g *Guide) Code(fea string, val any) (any, error) {
	var dis string

	switch x := val.(type) {
	case nil:
		return nil, nil
	case float64, float32, int, int32, int64, json.Number:
		return x, nil
	case bool:
		dis = strconv.FormatBool(x)
	case string:
		dis = x
	case []any:
		if len(x) != 1 {
			return nil, tracer.Maskf(unknownValueError, "%q takes exactly one value, got %d", fea, len(x))
		}
		return g.Code(fea, x[0])
	default:
		return nil, tracer.Maskf(unknownValueError, "%q has unsupported value type %T", fea, val)
	}

	m, ok := g.fea[fea]
	if !ok {
		return dis, nil
	}

	cod, ok := m[dis]
	if !ok {
		return nil, tracer.Maskf(unknownValueError, "%q is not a known value of %q", dis, fea)
	}

	return cod, nil
}

// Translate codes every field of a submission.
func (g *Guide) Translate(sub map[string]any) (map[string]any, error) {
	out := map[string]any{}

	for k, v := range sub {
		cod, err := g.Code(k, v)
		if err != nil {
			return nil, tracer.Mask(err)
		}

		out[k] = cod
	}

	return out, nil
}

// ValidValues returns the sorted raw codes per feature, usable as the valid
// value table of the preprocessor.
func (g *Guide) ValidValues() map[string][]string {
	val := map[string][]string{}

	for f, m := range g.fea {
		see := map[string]bool{}
		var cod []string
		for _, c := range m {
			if see[c] {
				continue
			}
			see[c] = true
			cod = append(cod, c)
		}

		sort.Strings(cod)
		val[f] = cod
	}

	return val
}

func (g *Guide) Version() string {
	return g.ver
}
