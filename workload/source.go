// Package workload provides the external interface of spec §6's workload
// file: a schema section, statements grouped by mix, and mix weights.
// Statement-text parsing itself stays external (spec §4.2); Source is the
// seam a CLI or config-loading collaborator implements or reuses.
package workload

import (
	"context"

	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/stmt"
)

// Source loads a schema and workload from some external representation.
type Source interface {
	Load(ctx context.Context) (*schema.Schema, *stmt.Workload, error)
}
