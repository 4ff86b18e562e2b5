package plan_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/nose-advisor/index"
	"github.com/dolthub/nose-advisor/plan"
	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/stmt"
)

func TestBuildMatrixCoversQueriesAndMutations(t *testing.T) {
	req := require.New(t)
	sch, userID, postID := buildBlog(t)
	user := sch.Entity(userID)
	post := sch.Entity(postID)

	userPath, err := schema.NewKeyPath(sch, user.Identity())
	req.NoError(err)
	postPath, err := schema.NewKeyPath(sch, post.Identity())
	req.NoError(err)

	q, err := stmt.NewQuery(sch, "q1", userPath).Eq(user.Identity(), int64(1)).Build()
	req.NoError(err)

	viewsID, _ := post.FieldByName("views")
	upd, err := stmt.NewUpdate(sch, "u1", postPath).Eq(post.Identity(), int64(2)).Set(viewsID).Build()
	req.NoError(err)

	w := stmt.New()
	w.AddStatement(q)
	w.AddStatement(upd)

	userIdx, err := index.SimpleIndex(sch, user)
	req.NoError(err)
	postIdx, err := index.SimpleIndex(sch, post)
	req.NoError(err)

	pl := newPlanner(t, sch)
	m, err := plan.BuildMatrix(context.Background(), pl, w, []*index.Index{userIdx, postIdx})
	req.NoError(err)

	require.Contains(t, m.QueryPlans, "q1")
	require.NotEmpty(t, m.QueryPlans["q1"])
	require.Contains(t, m.MutationPlans, "u1")
	require.NotNil(t, m.MutationPlans["u1"])
}
