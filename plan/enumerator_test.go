package plan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/nose-advisor/cost"
	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/plan"
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

func newPlanner(t *testing.T, sch *schema.Schema) *plan.Planner {
	t.Helper()
	m, err := cost.NewUniformModel(cost.Config{"schema": sch})
	require.NoError(t, err)
	return plan.NewPlanner(sch, m)
}

func TestPlanQuerySingleEntityLookup(t *testing.T) {
	req := require.New(t)
	sch, userID, _ := buildBlog(t)
	user := sch.Entity(userID)

	path, err := schema.NewKeyPath(sch, user.Identity())
	req.NoError(err)

	nameID, _ := user.FieldByName("name")
	q, err := stmt.NewQuery(sch, "q1", path).
		Eq(user.Identity(), int64(1)).
		Select(user.Identity(), nameID).
		Build()
	req.NoError(err)

	idx, err := index.SimpleIndex(sch, user)
	req.NoError(err)

	pl := newPlanner(t, sch)
	plans, err := pl.PlanQuery(q, []*index.Index{idx})
	req.NoError(err)
	req.Len(plans, 1)

	p := plans[idx.Key()]
	require.Equal(t, idx, p.Terminal)
	require.Greater(t, p.TotalCost(), 0.0)
}

func TestPlanQueryFailsWithNoCoveringCandidate(t *testing.T) {
	req := require.New(t)
	sch, userID, postID := buildBlog(t)
	user := sch.Entity(userID)
	post := sch.Entity(postID)

	path, err := schema.NewKeyPath(sch, user.Identity())
	req.NoError(err)
	q, err := stmt.NewQuery(sch, "q1", path).Eq(user.Identity(), int64(1)).Build()
	req.NoError(err)

	// A candidate over an unrelated entity can never cover q's path.
	unrelated, err := index.SimpleIndex(sch, post)
	req.NoError(err)

	pl := newPlanner(t, sch)
	_, err = pl.PlanQuery(q, []*index.Index{unrelated})
	req.Error(err)
}

func TestPlanQueryAddsSortWhenIndexOrderDoesNotMatch(t *testing.T) {
	req := require.New(t)
	sch, _, postID := buildBlog(t)
	post := sch.Entity(postID)

	path, err := schema.NewKeyPath(sch, post.Identity())
	req.NoError(err)

	authorID, _ := post.FieldByName("author")
	viewsID, _ := post.FieldByName("views")

	q, err := stmt.NewQuery(sch, "q1", path).
		Eq(authorID, int64(1)).
		OrderBy(viewsID, false).
		Build()
	req.NoError(err)

	// Index hashes on author and its order carries only the identity field
	// (required to cover post, the path's last entity), not views, so the
	// planner must add an explicit Sort step to satisfy the requested
	// ordering.
	idx, err := index.New(sch, path, []schema.FieldID{authorID}, []schema.FieldID{post.Identity()}, []schema.FieldID{viewsID})
	req.NoError(err)

	pl := newPlanner(t, sch)
	plans, err := pl.PlanQuery(q, []*index.Index{idx})
	req.NoError(err)

	p := plans[idx.Key()]
	var hasSort bool
	for _, s := range p.Steps {
		if s.Kind == plan.StepSort {
			hasSort = true
		}
	}
	require.True(t, hasSort)
}

func TestPlanQuerySkipsSortWhenIndexOrderAlreadyMatches(t *testing.T) {
	req := require.New(t)
	sch, _, postID := buildBlog(t)
	post := sch.Entity(postID)

	path, err := schema.NewKeyPath(sch, post.Identity())
	req.NoError(err)

	authorID, _ := post.FieldByName("author")
	viewsID, _ := post.FieldByName("views")

	q, err := stmt.NewQuery(sch, "q1", path).
		Eq(authorID, int64(1)).
		OrderBy(viewsID, false).
		Build()
	req.NoError(err)

	idx, err := index.New(sch, path, []schema.FieldID{authorID}, []schema.FieldID{viewsID, post.Identity()}, nil)
	req.NoError(err)

	pl := newPlanner(t, sch)
	plans, err := pl.PlanQuery(q, []*index.Index{idx})
	req.NoError(err)

	p := plans[idx.Key()]
	for _, s := range p.Steps {
		require.NotEqual(t, plan.StepSort, s.Kind)
	}
}
