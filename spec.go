package mushroom

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/xh3b4sd/mushroom/batch"
	"github.com/xh3b4sd/mushroom/matrix"
	"github.com/xh3b4sd/mushroom/store/core"
)

// Preprocessor describes how a fitted preprocessor turns raw mushroom
// observations into the numeric design matrix a classifier consumes. A
// preprocessor is fitted once on reference data and used for transformation
// afterwards.
//
//	pre, err := preprocessor.New(preprocessor.Config{
//	    Col: sch.Names(),
//	    Tar: "class",
//	    Val: gui.ValidValues(),
//	})
//
//	_, err = pre.Fit(ref)
type Preprocessor interface {
	// Transform maps a batch of observations to the design matrix, first the
	// scaled continuous columns, then the one-hot blocks of the categorical
	// columns. Missing values are imputed per batch, and rows carrying invalid
	// categorical values are dropped. If the batch contains the target column,
	// its values are returned as labels aligned with the matrix rows.
	//
	//	X, lab, err := pre.Transform(inp)
	//
	// Transform never modifies its input and never modifies fitted state, so
	// that equal inputs always produce equal outputs.
	Transform(*batch.Batch) (*matrix.CSR, []string, error)
	// FeatureNames returns the names of the design matrix columns in order.
	//
	//	cap-diameter
	//	cap-shape=b
	//	cap-shape=f
	//	cap-shape=x
	FeatureNames() []string
}

// Classifier describes the model consuming the design matrix. The model is
// trained elsewhere, e.g. via the "fit" Python API of CatBoost, and only
// restored and queried here.
type Classifier interface {
	// Predict returns one class label per row of the given design matrix, "e"
	// for edible and "p" for poisonous.
	Predict(context.Context, mat.Matrix) ([]string, error)
}

// Guide describes the reference guide translating display values chosen by
// users into the raw codes of the training data.
//
//	Convex -> x
//	Bell   -> b
type Guide interface {
	// Translate codes every field of a single submission. Numeric values pass
	// through unchanged.
	Translate(map[string]any) (map[string]any, error)
	// ValidValues returns the admissible raw codes per feature, usable as the
	// valid value table of a preprocessor.
	ValidValues() map[string][]string
	// Version identifies the guide revision, so that persisted state can be
	// traced back to the guide it was fitted with.
	Version() string
}

// Store describes where fitted preprocessor state is persisted. Implementations
// exist for the local filesystem, process memory, S3, SQLite and Postgres.
type Store interface {
	Delete(ctx context.Context, key string) error
	Driver() core.Driver
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, pre string) ([]string, error)
	Put(ctx context.Context, key string, byt []byte) error
}
