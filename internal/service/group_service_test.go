package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/form"
	"yatube/internal/model"
)

func TestGroupService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, errs, err := f.groupSvc.Create(ctx, &form.GroupForm{Title: "Bad", Slug: "bad slug", Description: "d"})
	require.NoError(t, err)
	assert.True(t, errs.Has("slug"))

	g := f.group(t, "cats")
	_, errs, err = f.groupSvc.Create(ctx, &form.GroupForm{Title: "Cats again", Slug: "cats", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Group with this slug already exists."}, errs.For("slug"))

	author := f.user(t, "author")
	post, _, err := f.postSvc.Create(ctx, author.ID, &form.PostForm{Text: "x", Group: strconv.FormatUint(g.ID, 10)}, nil)
	require.NoError(t, err)

	require.NoError(t, f.groupSvc.Delete(ctx, "cats"))
	got, err := f.postSvc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)

	assert.ErrorIs(t, f.groupSvc.Delete(ctx, "cats"), model.ErrNotFound)

	list, err := f.groupSvc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
