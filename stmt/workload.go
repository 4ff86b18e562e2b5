package stmt

// Mix is a named weighting of statement frequencies within a workload
// (spec's GLOSSARY "Mix"). A nil or empty Weights map means every statement
// in the workload is weighted uniformly, per spec §9 Open Question 3.
type Mix struct {
	Name    string
	Weights map[string]float64
}

// Workload is the statement set plus the named frequency mixes it is
// evaluated under. Supplemented relative to spec.md: the spec describes
// "mix" and "frequency" but never names the container that owns them; this
// is that container.
type Workload struct {
	Statements []*Statement
	Mixes      map[string]Mix

	// DefaultMix selects which Mix Frequency uses when no mix name is
	// given explicitly.
	DefaultMix string
}

// New returns an empty Workload.
func New() *Workload {
	return &Workload{Mixes: make(map[string]Mix)}
}

// AddStatement appends a statement to the workload.
func (w *Workload) AddStatement(s *Statement) { w.Statements = append(w.Statements, s) }

// AddMix registers a named frequency mix.
func (w *Workload) AddMix(m Mix) { w.Mixes[m.Name] = m }

// Frequency returns the relative weight of statement id under the named
// mix. An empty mix name uses DefaultMix. A mix that is absent, or present
// but missing an explicit weight for id, falls back to a uniform
// distribution across every statement in the workload (spec §9 Open
// Question 3): weight 1/N for each of the workload's N statements, or 1 if
// the workload has none yet.
func (w *Workload) Frequency(mix, id string) float64 {
	if mix == "" {
		mix = w.DefaultMix
	}
	if m, ok := w.Mixes[mix]; ok {
		if wgt, ok := m.Weights[id]; ok {
			return wgt
		}
	}
	n := len(w.Statements)
	if n == 0 {
		return 1
	}
	return 1 / float64(n)
}

// ByID returns the statement with the given id, if present.
func (w *Workload) ByID(id string) (*Statement, bool) {
	for _, s := range w.Statements {
		if s.id == id {
			return s, true
		}
	}
	return nil, false
}
