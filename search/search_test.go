package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/nose-advisor/schema"
	"github.com/dolthub/nose-advisor/search"
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

func TestAdvisorRunEndToEnd(t *testing.T) {
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

	w := stmt.New()
	w.AddStatement(q)

	advisor := search.NewAdvisor()
	result, err := advisor.Run(context.Background(), sch, w, search.Options{Objective: search.ObjectiveCost})
	req.NoError(err)

	require.NotEmpty(t, result.ID)
	require.NotEmpty(t, result.Indexes)
	require.Len(t, result.Plans, 1)
	require.Equal(t, "q1", result.Plans[0].StatementID)

	data, err := result.JSON()
	req.NoError(err)
	roundTripped, err := search.ParseResultJSON(data)
	req.NoError(err)
	require.Equal(t, result.ID, roundTripped.ID)

	ydata, err := result.YAML()
	req.NoError(err)
	yRoundTripped, err := search.ParseResultYAML(ydata)
	req.NoError(err)
	require.Equal(t, result.TotalCost, yRoundTripped.TotalCost)
}

func TestAdvisorRunUnknownCostModelFailsFast(t *testing.T) {
	req := require.New(t)
	sch, userID, _ := buildBlog(t)
	user := sch.Entity(userID)
	path, err := schema.NewKeyPath(sch, user.Identity())
	req.NoError(err)

	q, err := stmt.NewQuery(sch, "q1", path).Eq(user.Identity(), int64(1)).Build()
	req.NoError(err)
	w := stmt.New()
	w.AddStatement(q)

	advisor := search.NewAdvisor()
	_, err = advisor.Run(context.Background(), sch, w, search.Options{CostModel: "nonexistent"})
	req.Error(err)
}

func TestAdvisorRunUnknownSolverFailsFast(t *testing.T) {
	req := require.New(t)
	sch, userID, _ := buildBlog(t)
	user := sch.Entity(userID)
	path, err := schema.NewKeyPath(sch, user.Identity())
	req.NoError(err)

	q, err := stmt.NewQuery(sch, "q1", path).Eq(user.Identity(), int64(1)).Build()
	req.NoError(err)
	w := stmt.New()
	w.AddStatement(q)

	advisor := search.NewAdvisor()
	_, err = advisor.Run(context.Background(), sch, w, search.Options{Solver: "nonexistent"})
	req.Error(err)
}
