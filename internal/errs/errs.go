// Package errs defines the typed error kinds propagated out of the advisor,
// per the error-handling design: every failure surfaces as one of these
// kinds, none recovered locally except where the owning package says so.
package errs

import goerrors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrBrokenPath is returned when a KeyPath is constructed through a
	// foreign key that does not land on the expected entity.
	ErrBrokenPath = goerrors.NewKind("schema: broken path: %s")

	// ErrDuplicateField is returned when an entity already owns a field
	// with the given name.
	ErrDuplicateField = goerrors.NewKind("schema: entity %q already has field %q")

	// ErrNoIdentityField is returned when an entity has no field marked
	// as the identity key.
	ErrNoIdentityField = goerrors.NewKind("schema: entity %q has no identity field")

	// ErrUnknownEntity is returned when a foreign key targets an entity
	// that was never added to the schema.
	ErrUnknownEntity = goerrors.NewKind("schema: foreign key targets unknown entity %q")

	// ErrAsymmetricReverse is returned when a foreign key's reverse edge
	// does not point back to the field that declares it.
	ErrAsymmetricReverse = goerrors.NewKind("schema: foreign key %q<->%q reverse link is asymmetric")

	// ErrStatementParse is returned by a stmt.Parser implementation when
	// the source text is rejected. Carries the offending text and span.
	ErrStatementParse = goerrors.NewKind("statement: parse error at %s: %s")

	// ErrNoPlanFor is the fatal PlanError::NoPlanFor(q) of spec §4.5: no
	// valid plan exists for a query over the candidate index set. This
	// indicates a bug in candidate enumeration, not a workload mistake.
	ErrNoPlanFor = goerrors.NewKind("plan: no valid plan for statement %q over candidate index set")

	// ErrSolverInfeasible is returned when the ILP has no feasible
	// solution; carries a rendering of the solver-reported IIS.
	ErrSolverInfeasible = goerrors.NewKind("solve: infeasible: %s")

	// ErrSolverUnavailable is returned when the named solver plugin could
	// not be constructed or invoked; the rest of the program (enumeration,
	// diagnostics) remains usable.
	ErrSolverUnavailable = goerrors.NewKind("solve: solver %q unavailable: %s")

	// ErrUnknownPlugin is returned by a plugin registry when asked to
	// construct a plugin under a name it does not recognize. Fails fast,
	// per the Design Notes' "replace dynamic lookup with explicit
	// registries" directive.
	ErrUnknownPlugin = goerrors.NewKind("%s: unknown plugin %q")

	// ErrConfig wraps a configuration problem surfaced at startup only.
	ErrConfig = goerrors.NewKind("config: %s")
)
