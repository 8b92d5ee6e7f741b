package preprocessor

import (
	"go.uber.org/zap"
)

// Imputation selects where the fill values for missing entries come from.
type Imputation int

const (
	// ImputeBatch fills missing entries with the mode or median of the batch
	// being transformed. For a single-row batch this degenerates to the row's
	// own value, or the fallbacks if the value is missing.
	ImputeBatch Imputation = iota
	// ImputeFitted fills missing entries with the mode or median observed at
	// fit time.
	ImputeFitted
)

// Unknown is the fill value of a categorical column without any observed
// value.
const Unknown = "unknown"

// Ring describes the one conditional validity rule of the mushroom data. The
// ring type column is only checked against its valid values when the has-ring
// column holds one of the present tokens.
type Ring struct {
	// Typ is the column constrained conditionally, "ring-type" by default.
	Typ string
	// Has is the companion column, "has-ring" by default.
	Has string
	// Tok are the raw tokens of Has indicating a ring, compared ignoring
	// case. Defaults to "t" and "true", the latter being how boolean form
	// values arrive.
	Tok []string
}

type Config struct {
	// Col is the ordered list of needed columns agreed between training and
	// inference. Empty means every column of the fit batch.
	Col []string
	// Imp is the imputation policy, ImputeBatch by default.
	Imp Imputation
	Log *zap.Logger
	// Rin is the conditional ring rule. The zero value selects the defaults.
	Rin Ring
	// Tar is the optional target column, e.g. "class". It is never a
	// feature and must not be part of Col.
	Tar string
	// Val maps categorical columns to their admissible raw values. Columns
	// without an entry are not filtered. Nil disables validity filtering.
	Val map[string][]string
}

func (c *Config) defaults() {
	if c.Log == nil {
		c.Log = zap.NewNop()
	}

	if c.Rin.Typ == "" {
		c.Rin.Typ = "ring-type"
	}
	if c.Rin.Has == "" {
		c.Rin.Has = "has-ring"
	}
	if len(c.Rin.Tok) == 0 {
		c.Rin.Tok = []string{"t", "true"}
	}
}
