package workload_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/stmt"
	"github.com/dolthub/nose-advisor/workload"
)

// stubParser treats statement text as an entity name and builds an Eq lookup
// on that entity's identity field, just enough to exercise YAMLSource.Load
// without a real statement-language front end.
type stubParser struct{}

func (stubParser) Parse(sch *schema.Schema, id, text string) (*stmt.Statement, error) {
	entID, ok := sch.EntityByName(text)
	if !ok {
		return nil, fmt.Errorf("unknown entity %q", text)
	}
	ent := sch.Entity(entID)
	path, err := schema.NewKeyPath(sch, ent.Identity())
	if err != nil {
		return nil, err
	}
	return stmt.NewQuery(sch, id, path).Eq(ent.Identity(), int64(1)).Build()
}

const blogYAML = `
schema:
  entities:
    - name: user
      count: 1000
      fields:
        - name: id
          type: id
        - name: name
          type: string(64)
        - name: posts
          type: foreign_key(post, many)
          reverse: author
    - name: post
      count: 50000
      fields:
        - name: id
          type: id
        - name: author
          type: foreign_key(user, one)
          reverse: posts
        - name: views
          type: int
statements:
  default:
    - id: q1
      text: user
    - id: q2
      text: post
mix:
  q1: 0.75
  q2: 0.25
`

func TestYAMLSourceLoadBuildsSchemaAndWorkload(t *testing.T) {
	req := require.New(t)
	src := &workload.YAMLSource{Data: []byte(blogYAML), Parser: stubParser{}}

	sch, w, err := src.Load(context.Background())
	req.NoError(err)

	userID, ok := sch.EntityByName("user")
	req.True(ok)
	postID, ok := sch.EntityByName("post")
	req.True(ok)
	user, post := sch.Entity(userID), sch.Entity(postID)

	authorField, ok := post.FieldByName("author")
	req.True(ok)
	fk := sch.Field(authorField).ForeignKey()
	req.NotNil(fk)
	require.Equal(t, user.ID(), fk.Target)

	postsField, ok := user.FieldByName("posts")
	req.True(ok)
	userFK := sch.Field(postsField).ForeignKey()
	req.NotNil(userFK)
	require.Equal(t, post.ID(), userFK.Target)
	require.Equal(t, authorField, userFK.Reverse)

	require.Len(t, w.Statements, 2)
	require.Equal(t, 0.75, w.Frequency("default", "q1"))
	require.Equal(t, 0.25, w.Frequency("default", "q2"))
}

func TestYAMLSourceLoadRejectsStatementsWithoutParser(t *testing.T) {
	src := &workload.YAMLSource{Data: []byte(blogYAML)}
	_, _, err := src.Load(context.Background())
	require.Error(t, err)
}

func TestYAMLSourceLoadRejectsUnknownForeignKeyTarget(t *testing.T) {
	const bad = `
schema:
  entities:
    - name: user
      count: 10
      fields:
        - name: id
          type: id
        - name: home
          type: foreign_key(nonexistent, one)
`
	src := &workload.YAMLSource{Data: []byte(bad)}
	_, _, err := src.Load(context.Background())
	require.Error(t, err)
}

func TestYAMLSourceLoadRejectsSchemaMissingIdentity(t *testing.T) {
	const bad = `
schema:
  entities:
    - name: user
      count: 10
      fields:
        - name: name
          type: string(32)
`
	src := &workload.YAMLSource{Data: []byte(bad)}
	_, _, err := src.Load(context.Background())
	require.Error(t, err)
}
