package stmt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/stmt"
)

func buildBlog(t *testing.T) (sch *schema.Schema, userID, postID schema.EntityID) {
	t.Helper()
	req := require.New(t)

	sch = schema.New()
	userID, err := sch.AddEntity("user", 1000).
		IdentityField("id").
		StringField("name", 64).
		ForeignKeyField("posts", schema.EntityID(1), schema.Many, "author").
		Build()
	req.NoError(err)

	postID, err = sch.AddEntity("post", 50000).
		IdentityField("id").
		ForeignKeyField("author", userID, schema.One, "posts").
		StringField("body", 512).
		IntField("views").
		Build()
	req.NoError(err)

	req.NoError(sch.Validate())
	return sch, userID, postID
}

func TestBuilderEqCondition(t *testing.T) {
	req := require.New(t)
	sch, userID, _ := buildBlog(t)
	user := sch.Entity(userID)
	path, err := schema.NewKeyPath(sch, user.Identity())
	req.NoError(err)

	nameID, _ := user.FieldByName("name")

	st, err := stmt.NewQuery(sch, "q1", path).
		Eq(nameID, "alice").
		Select(user.Identity(), nameID).
		Build()
	req.NoError(err)

	require.Equal(t, "q1", st.ID())
	require.Equal(t, stmt.QueryKind, st.Kind())
	require.Len(t, st.EqFields(), 1)
	v, err := st.EqFields()[0].String()
	req.NoError(err)
	require.Equal(t, "alice", v)
}

func TestBuilderRejectsFieldOffPath(t *testing.T) {
	req := require.New(t)
	sch, userID, postID := buildBlog(t)
	user := sch.Entity(userID)
	post := sch.Entity(postID)

	path, err := schema.NewKeyPath(sch, user.Identity())
	req.NoError(err)

	bodyID, _ := post.FieldByName("body")
	_, err = stmt.NewQuery(sch, "q1", path).Eq(bodyID, "x").Build()
	req.Error(err)
}

func TestBuilderRejectsMultipleRanges(t *testing.T) {
	req := require.New(t)
	sch, userID, _ := buildBlog(t)
	user := sch.Entity(userID)
	path, err := schema.NewKeyPath(sch, user.Identity())
	req.NoError(err)

	nameID, _ := user.FieldByName("name")

	_, err = stmt.NewQuery(sch, "q1", path).
		Range(nameID, "a", true, true, "z", true, true).
		Range(nameID, "a", true, true, "z", true, true).
		Build()
	require.ErrorIs(t, err, stmt.ErrMultipleRanges)
}

func TestModifiesIndexForUpdateOnlyConsidersSetFields(t *testing.T) {
	req := require.New(t)
	sch, _, postID := buildBlog(t)
	post := sch.Entity(postID)
	path, err := schema.NewKeyPath(sch, post.Identity())
	req.NoError(err)

	viewsID, _ := post.FieldByName("views")
	bodyID, _ := post.FieldByName("body")

	idxOnViews, err := index.New(sch, path, []schema.FieldID{post.Identity()}, nil, []schema.FieldID{viewsID})
	req.NoError(err)
	idxOnBody, err := index.New(sch, path, []schema.FieldID{post.Identity()}, nil, []schema.FieldID{bodyID})
	req.NoError(err)

	upd, err := stmt.NewUpdate(sch, "u1", path).Set(viewsID).Build()
	req.NoError(err)

	require.True(t, upd.ModifiesIndex(sch, idxOnViews))
	require.False(t, upd.ModifiesIndex(sch, idxOnBody))
}

func TestModifiesIndexForInsertAndDeleteAffectsWholeRow(t *testing.T) {
	req := require.New(t)
	sch, _, postID := buildBlog(t)
	post := sch.Entity(postID)
	path, err := schema.NewKeyPath(sch, post.Identity())
	req.NoError(err)

	bodyID, _ := post.FieldByName("body")
	idxOnBody, err := index.New(sch, path, []schema.FieldID{post.Identity()}, nil, []schema.FieldID{bodyID})
	req.NoError(err)

	ins, err := stmt.NewInsert(sch, "i1", path).Build()
	req.NoError(err)
	require.True(t, ins.ModifiesIndex(sch, idxOnBody))

	del, err := stmt.NewDelete(sch, "d1", path).Build()
	req.NoError(err)
	require.True(t, del.ModifiesIndex(sch, idxOnBody))
}

func TestWorkloadFrequencyFallsBackToUniform(t *testing.T) {
	w := stmt.New()
	sch, userID, _ := buildBlog(t)
	user := sch.Entity(userID)
	path, err := schema.NewKeyPath(sch, user.Identity())
	require.NoError(t, err)

	q1, err := stmt.NewQuery(sch, "q1", path).Build()
	require.NoError(t, err)
	q2, err := stmt.NewQuery(sch, "q2", path).Build()
	require.NoError(t, err)
	w.AddStatement(q1)
	w.AddStatement(q2)

	require.InDelta(t, 0.5, w.Frequency("", "q1"), 1e-9)
	require.InDelta(t, 0.5, w.Frequency("missing-mix", "q2"), 1e-9)
}

func TestWorkloadFrequencyUsesExplicitMix(t *testing.T) {
	w := stmt.New()
	w.AddMix(stmt.Mix{Name: "default", Weights: map[string]float64{"q1": 0.9, "q2": 0.1}})
	require.InDelta(t, 0.9, w.Frequency("default", "q1"), 1e-9)
	require.InDelta(t, 0.1, w.Frequency("default", "q2"), 1e-9)
}
