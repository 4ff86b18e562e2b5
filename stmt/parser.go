package stmt

import "github.com/dolthub/nose-advisor/schema"

// Parser turns one statement's textual form into a validated Statement.
// Statement-text parsing is explicitly external to this module (spec §4.2
// "Parsing of textual statements is external"); Parser is the seam a
// front-end collaborator implements. workload.YAMLSource takes one as a
// dependency instead of trying to parse text itself.
type Parser interface {
	Parse(sch *schema.Schema, id, text string) (*Statement, error)
}
