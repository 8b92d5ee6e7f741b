package preprocessor

import (
	"bytes"
	"encoding/gob"
	"sort"

	"github.com/xh3b4sd/tracer"
	"go.uber.org/zap"
)

// version is the snapshot format. Bump it whenever snapshot or state change
// shape.
const version = 1

type snapshot struct {
	Ver int
	Col []string
	Imp Imputation
	Rin Ring
	Tar string
	// Val is the valid value table sorted by column, so that equal
	// configurations encode to equal bytes.
	Val    []valid
	HasVal bool
	Sta    state
}

type valid struct {
	Col string
	Val []string
}

// MarshalBinary encodes configuration and fitted state. The logger is not
// part of the snapshot.
func (p *Preprocessor) MarshalBinary() ([]byte, error) {
	sta := p.sta.Load()
	if sta == nil {
		return nil, &UnfittedStateError{Op: "marshal"}
	}

	sna := snapshot{
		Ver:    version,
		Col:    p.con.Col,
		Imp:    p.con.Imp,
		Rin:    p.con.Rin,
		Tar:    p.con.Tar,
		HasVal: p.con.Val != nil,
		Sta:    *sta,
	}

	for c, v := range p.con.Val {
		sna.Val = append(sna.Val, valid{Col: c, Val: v})
	}
	sort.Slice(sna.Val, func(i, j int) bool { return sna.Val[i].Col < sna.Val[j].Col })

	var buf bytes.Buffer
	{
		err := gob.NewEncoder(&buf).Encode(sna)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary restores a snapshot created by MarshalBinary, replacing
// configuration and fitted state. The receiver's logger is kept. It must not
// run concurrently with any other method.
func (p *Preprocessor) UnmarshalBinary(byt []byte) error {
	var sna snapshot
	{
		err := gob.NewDecoder(bytes.NewReader(byt)).Decode(&sna)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	if sna.Ver != version {
		return tracer.Maskf(invalidConfigError, "snapshot version %d is not supported", sna.Ver)
	}

	con := Config{
		Col: sna.Col,
		Imp: sna.Imp,
		Log: p.con.Log,
		Rin: sna.Rin,
		Tar: sna.Tar,
	}

	if sna.HasVal {
		con.Val = map[string][]string{}
		for _, v := range sna.Val {
			con.Val[v.Col] = v.Val
		}
	}

	con.defaults()

	sta := sna.Sta

	p.con = con
	p.sta.Store(&sta)

	return nil
}

// Restore creates a preprocessor from a snapshot. log may be nil.
func Restore(byt []byte, log *zap.Logger) (*Preprocessor, error) {
	p, err := New(Config{Log: log})
	if err != nil {
		return nil, tracer.Mask(err)
	}

	{
		err := p.UnmarshalBinary(byt)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	return p, nil
}
