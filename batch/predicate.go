package batch

import "strings"

// Predicate decides per row whether it survives a filter step. Predicates are
// named so that a pipeline of them can report which step removed rows.
type Predicate interface {
	Keep(b *Batch, row int) bool
	Name() string
}

// In keeps rows whose value in column Col is one of Set. Missing values are
// never in the set. A batch without Col keeps every row.
type In struct {
	Col string
	Set map[string]bool
}

func (p In) Keep(b *Batch, row int) bool {
	c, ok := b.Column(p.Col)
	if !ok {
		return true
	}

	if c.Missing(row) {
		return false
	}

	return p.Set[c.String(row)]
}

func (p In) Name() string {
	return "in(" + p.Col + ")"
}

// When applies Then only to rows where If holds. All other rows are kept.
type When struct {
	If   Predicate
	Then Predicate
}

func (p When) Keep(b *Batch, row int) bool {
	if !p.If.Keep(b, row) {
		return true
	}

	return p.Then.Keep(b, row)
}

func (p When) Name() string {
	return "when(" + p.If.Name() + ", " + p.Then.Name() + ")"
}

// Equals keeps rows whose value in column Col equals Val. A batch without Col
// is treated as if Val was present, so the guarded constraint still applies.
type Equals struct {
	Col string
	Val string
}

func (p Equals) Keep(b *Batch, row int) bool {
	c, ok := b.Column(p.Col)
	if !ok {
		return true
	}

	return !c.Missing(row) && c.String(row) == p.Val
}

func (p Equals) Name() string {
	return p.Col + "==" + p.Val
}

// Matches keeps rows whose value in column Col equals one of Val, ignoring
// case. A batch without Col is treated like in Equals.
type Matches struct {
	Col string
	Val []string
}

func (p Matches) Keep(b *Batch, row int) bool {
	c, ok := b.Column(p.Col)
	if !ok {
		return true
	}

	if c.Missing(row) {
		return false
	}

	for _, v := range p.Val {
		if strings.EqualFold(c.String(row), v) {
			return true
		}
	}

	return false
}

func (p Matches) Name() string {
	return p.Col + "~=" + strings.Join(p.Val, "|")
}

// NewSet is a convenience for building the lookup set of In.
func NewSet(val ...string) map[string]bool {
	set := make(map[string]bool, len(val))
	for _, v := range val {
		set[v] = true
	}

	return set
}
