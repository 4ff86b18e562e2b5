package workload

import (
	"context"

	"gopkg.in/yaml.v2"

	"github.com/dolthub/nose-advisor/internal/errs"
	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/stmt"
)

// YAMLSource is the reference Source implementation of spec §6's workload
// file: a schema section, a statements section grouped by mix, and a mix
// section mapping statement id to weight. Unknown keys are ignored, per
// gopkg.in/yaml.v2's default decoding behavior.
type YAMLSource struct {
	Data   []byte
	Parser stmt.Parser // required only if the document has a statements section
}

type yamlDoc struct {
	Schema struct {
		Entities []yamlEntity `yaml:"entities"`
	} `yaml:"schema"`
	Statements map[string][]yamlStatement `yaml:"statements"`
	Mix        map[string]float64         `yaml:"mix"`
}

type yamlEntity struct {
	Name   string      `yaml:"name"`
	Count  int64       `yaml:"count"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Reverse string `yaml:"reverse"`
}

type yamlStatement struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// Load parses Data into a *schema.Schema and *stmt.Workload.
func (src *YAMLSource) Load(ctx context.Context) (*schema.Schema, *stmt.Workload, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(src.Data, &doc); err != nil {
		return nil, nil, errs.ErrConfig.New(err.Error())
	}

	sch, err := buildSchema(doc.Schema.Entities)
	if err != nil {
		return nil, nil, err
	}
	if err := sch.Validate(); err != nil {
		return nil, nil, err
	}

	w, err := buildWorkload(ctx, sch, src.Parser, doc)
	if err != nil {
		return nil, nil, err
	}
	return sch, w, nil
}

// buildSchema resolves forward-referencing foreign keys by precomputing
// every entity's handle from its position in the declaration list: entity
// IDs are assigned by Schema in exactly that order (schema.EntityBuilder.
// Build), so a foreign key naming an entity declared later in the document
// can still be built in one left-to-right pass.
func buildSchema(entities []yamlEntity) (*schema.Schema, error) {
	nameToID := make(map[string]schema.EntityID, len(entities))
	for i, e := range entities {
		if _, dup := nameToID[e.Name]; dup {
			return nil, errs.ErrConfig.New("duplicate entity name " + e.Name)
		}
		nameToID[e.Name] = schema.EntityID(i)
	}

	sch := schema.New()
	for _, e := range entities {
		b := sch.AddEntity(e.Name, e.Count)
		for _, f := range e.Fields {
			tok, err := parseFieldToken(f.Type)
			if err != nil {
				return nil, err
			}
			switch {
			case tok.isFK:
				targetID, ok := nameToID[tok.fkTarget]
				if !ok {
					return nil, errs.ErrUnknownEntity.New(tok.fkTarget)
				}
				b.ForeignKeyField(f.Name, targetID, tok.fkArity, f.Reverse)
			case tok.scalar == schema.IdKey:
				b.IdentityField(f.Name)
			case tok.scalar == schema.StringKind:
				b.StringField(f.Name, tok.strLen)
			case tok.scalar == schema.Int:
				b.IntField(f.Name)
			case tok.scalar == schema.Float:
				b.FloatField(f.Name)
			case tok.scalar == schema.Date:
				b.DateField(f.Name)
			}
		}
		if _, err := b.Build(); err != nil {
			return nil, err
		}
	}
	return sch, nil
}

func buildWorkload(ctx context.Context, sch *schema.Schema, parser stmt.Parser, doc yamlDoc) (*stmt.Workload, error) {
	w := stmt.New()

	for mixName, stmts := range doc.Statements {
		var ids []string
		for _, s := range stmts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if parser == nil {
				return nil, errs.ErrConfig.New("workload has statements but no stmt.Parser was supplied")
			}
			parsed, err := parser.Parse(sch, s.ID, s.Text)
			if err != nil {
				return nil, errs.ErrStatementParse.New(s.ID, err.Error())
			}
			w.AddStatement(parsed)
			ids = append(ids, s.ID)
		}

		weights := make(map[string]float64, len(ids))
		for _, id := range ids {
			if weight, ok := doc.Mix[id]; ok {
				weights[id] = weight
			}
		}
		w.AddMix(stmt.Mix{Name: mixName, Weights: weights})
	}

	return w, nil
}
