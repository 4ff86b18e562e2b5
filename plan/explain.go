package plan

import (
	"fmt"
	"strings"
)

// Explain renders a plan as an indented, human-readable step list: support
// queries first, then the plan's own steps in execution order, then the
// total. This is not part of the search loop; it exists to let a
// caller inspect why the advisor picked what it picked.
func (p *Plan) Explain() string {
	var b strings.Builder
	p.explainTo(&b, 0)
	return b.String()
}

func (p *Plan) explainTo(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, sup := range p.Supports {
		fmt.Fprintf(b, "%ssupport query for %s:\n", indent, p.Statement.ID())
		sup.explainTo(b, depth+1)
	}
	for _, s := range p.Steps {
		fmt.Fprintf(b, "%s%s (cost=%.3f)\n", indent, explainStep(s), s.Cost)
	}
	fmt.Fprintf(b, "%stotal cost: %.3f\n", indent, p.TotalCost())
}

func explainStep(s Step) string {
	switch s.Kind {
	case StepIndexLookup:
		return fmt.Sprintf("lookup index %s [%d:%d]", s.Index.Path(), s.StartPos, s.EndPos)
	case StepFilter:
		return fmt.Sprintf("filter fields=%v range=%v", s.Fields, s.HasRange)
	case StepSort:
		return fmt.Sprintf("sort fields=%v", s.Fields)
	case StepLimit:
		return fmt.Sprintf("limit %d", s.Limit)
	case StepInsert:
		return fmt.Sprintf("insert into index %s", s.Index.Path())
	case StepDelete:
		return fmt.Sprintf("delete from index %s", s.Index.Path())
	default:
		return "unknown step"
	}
}
