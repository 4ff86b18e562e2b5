package ilp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/nose-advisor/cost"
	"github.com/dolthub/nose-advisor/ilp"
	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/plan"
	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/solve"
	"github.com/dolthub/nose-advisor/stmt"
)

func buildPostSchema(t *testing.T) (sch *schema.Schema, postID schema.EntityID) {
	t.Helper()
	req := require.New(t)
	sch = schema.New()
	userID, err := sch.AddEntity("user", 1000).
		IdentityField("id").
		ForeignKeyField("posts", schema.EntityID(1), schema.Many, "author").
		Build()
	req.NoError(err)
	postID, err = sch.AddEntity("post", 50000).
		IdentityField("id").
		ForeignKeyField("author", userID, schema.One, "posts").
		IntField("views").
		Build()
	req.NoError(err)
	req.NoError(sch.Validate())
	return sch, postID
}

func TestProblemSolveCostObjectivePicksCheaperPlanAndTrimsUnusedIndexes(t *testing.T) {
	req := require.New(t)
	sch, postID := buildPostSchema(t)
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

	w := stmt.New()
	w.AddStatement(q)

	// idxSorted already orders by views: no Sort step needed, cheaper.
	// post's identity trails in order to satisfy the last-entity-coverage
	// invariant.
	idxSorted, err := index.New(sch, path, []schema.FieldID{authorID}, []schema.FieldID{viewsID, post.Identity()}, nil)
	req.NoError(err)
	// idxUnsorted's order carries only the identity field, not views, so it
	// needs an explicit Sort step: strictly more expensive.
	idxUnsorted, err := index.New(sch, path, []schema.FieldID{authorID}, []schema.FieldID{post.Identity()}, []schema.FieldID{viewsID})
	req.NoError(err)

	candidates := []*index.Index{idxSorted, idxUnsorted}

	model, err := cost.NewUniformModel(cost.Config{"schema": sch})
	req.NoError(err)
	pl := plan.NewPlanner(sch, model)

	matrix, err := plan.BuildMatrix(context.Background(), pl, w, candidates)
	req.NoError(err)

	problem := &ilp.Problem{
		Candidates: candidates,
		Workload:   w,
		Matrix:     matrix,
		Objective:  ilp.ObjectiveCost,
	}

	solver := solve.NewBranchAndBound()
	sol, err := problem.Solve(context.Background(), solver)
	req.NoError(err)

	require.Equal(t, idxSorted.Key(), sol.QueryChoice["q1"])
	require.Equal(t, 1, sol.IndexCount)
	_, stillSelected := sol.Selected[idxUnsorted.Key()]
	require.False(t, stillSelected, "second-stage refinement should drop the unused index")
}

func TestProblemSolveSpaceBudgetCanMakeItInfeasible(t *testing.T) {
	req := require.New(t)
	sch, postID := buildPostSchema(t)
	post := sch.Entity(postID)
	path, err := schema.NewKeyPath(sch, post.Identity())
	req.NoError(err)
	authorID, _ := post.FieldByName("author")

	q, err := stmt.NewQuery(sch, "q1", path).Eq(authorID, int64(1)).Build()
	req.NoError(err)

	w := stmt.New()
	w.AddStatement(q)

	idx, err := index.New(sch, path, []schema.FieldID{authorID}, []schema.FieldID{post.Identity()}, nil)
	req.NoError(err)
	candidates := []*index.Index{idx}

	model, err := cost.NewUniformModel(cost.Config{"schema": sch})
	req.NoError(err)
	pl := plan.NewPlanner(sch, model)
	matrix, err := plan.BuildMatrix(context.Background(), pl, w, candidates)
	req.NoError(err)

	budget := int64(0)
	problem := &ilp.Problem{
		Candidates:  candidates,
		Workload:    w,
		Matrix:      matrix,
		Objective:   ilp.ObjectiveCost,
		SpaceBudget: &budget,
	}

	_, err = problem.Solve(context.Background(), solve.NewBranchAndBound())
	req.Error(err)
}

func TestProblemSolveObjectiveIndexesSkipsSecondStage(t *testing.T) {
	req := require.New(t)
	sch, postID := buildPostSchema(t)
	post := sch.Entity(postID)
	path, err := schema.NewKeyPath(sch, post.Identity())
	req.NoError(err)
	authorID, _ := post.FieldByName("author")

	q, err := stmt.NewQuery(sch, "q1", path).Eq(authorID, int64(1)).Build()
	req.NoError(err)
	w := stmt.New()
	w.AddStatement(q)

	idx, err := index.New(sch, path, []schema.FieldID{authorID}, []schema.FieldID{post.Identity()}, nil)
	req.NoError(err)
	candidates := []*index.Index{idx}

	model, err := cost.NewUniformModel(cost.Config{"schema": sch})
	req.NoError(err)
	pl := plan.NewPlanner(sch, model)
	matrix, err := plan.BuildMatrix(context.Background(), pl, w, candidates)
	req.NoError(err)

	problem := &ilp.Problem{
		Candidates: candidates,
		Workload:   w,
		Matrix:     matrix,
		Objective:  ilp.ObjectiveIndexes,
	}
	sol, err := problem.Solve(context.Background(), solve.NewBranchAndBound())
	req.NoError(err)
	require.Equal(t, 1, sol.IndexCount)
}
