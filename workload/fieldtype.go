package workload

import (
	"regexp"
	"strconv"

	"github.com/dolthub/nose-advisor/internal/errs"
	"github.com/dolthub/nose-advisor/schema"
)

var (
	stringTypeRE = regexp.MustCompile(`^string\((\d+)\)$`)
	fkTypeRE     = regexp.MustCompile(`^foreign_key\(\s*([A-Za-z0-9_]+)\s*,\s*(one|many)\s*\)$`)
)

// fieldToken is a parsed spec §6 field-type token: int, float, string(N),
// date, id, or foreign_key(target, one|many).
type fieldToken struct {
	scalar   schema.FieldKind // set when this isn't a foreign key
	isFK     bool
	strLen   int
	fkTarget string
	fkArity  schema.Arity
}

func parseFieldToken(tok string) (fieldToken, error) {
	switch tok {
	case "int":
		return fieldToken{scalar: schema.Int}, nil
	case "float":
		return fieldToken{scalar: schema.Float}, nil
	case "date":
		return fieldToken{scalar: schema.Date}, nil
	case "id":
		return fieldToken{scalar: schema.IdKey}, nil
	}
	if m := stringTypeRE.FindStringSubmatch(tok); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return fieldToken{}, errs.ErrConfig.New("bad string length in field type " + tok)
		}
		return fieldToken{scalar: schema.StringKind, strLen: n}, nil
	}
	if m := fkTypeRE.FindStringSubmatch(tok); m != nil {
		arity := schema.One
		if m[2] == "many" {
			arity = schema.Many
		}
		return fieldToken{isFK: true, fkTarget: m[1], fkArity: arity}, nil
	}
	return fieldToken{}, errs.ErrConfig.New("unrecognized field type " + tok)
}
