package cost

import "github.com/dolthub/nose-advisor/internal/errs"

// Config carries free-form construction parameters for a registered cost
// model plugin.
type Config map[string]any

// Constructor builds a Model from a Config.
type Constructor func(Config) (Model, error)

// Registry maps a cost-model plugin name to its Constructor. Replaces
// dynamic/reflective class lookup with an explicit map, per spec §9 Design
// Notes; an unknown name fails fast.
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry returns a Registry pre-seeded with the built-in "uniform"
// model.
func NewRegistry() *Registry {
	r := &Registry{ctors: make(map[string]Constructor)}
	r.Register("uniform", NewUniformModel)
	return r
}

// Register adds a named constructor. A later call with the same name
// replaces the earlier one.
func (r *Registry) Register(name string, ctor Constructor) { r.ctors[name] = ctor }

// Build constructs the named plugin, or fails fast with errs.ErrUnknownPlugin.
func (r *Registry) Build(name string, cfg Config) (Model, error) {
	ctor, ok := r.ctors[name]
	if !ok {
		return nil, errs.ErrUnknownPlugin.New("cost", name)
	}
	return ctor(cfg)
}
