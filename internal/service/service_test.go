package service

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/memory"
	"yatube/internal/storage"
)

type fixture struct {
	store   *memory.Store
	users   *memory.UserRepository
	groups  *memory.GroupRepository
	posts   *memory.PostRepository
	follows *memory.FollowRepository
	outbox  *memory.OutboxRepository
	fs      afero.Fs

	postSvc   *PostService
	followSvc *FollowService
	userSvc   *UserService
	groupSvc  *GroupService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore(), fs: afero.NewMemMapFs()}
	var comments *memory.CommentRepository
	f.users, f.groups, f.posts, comments, f.follows, f.outbox = f.store.Repositories()
	images := storage.NewFsStore(f.fs, "/media/")
	f.postSvc = NewPostService(f.posts, comments, f.users, f.groups, f.follows, images, 10)
	f.followSvc = NewFollowService(f.follows, f.users)
	f.userSvc = NewUserService(f.users, memory.NewSessionStore(64, time.Minute), pkg.NewTokenIssuer("test", time.Hour))
	f.groupSvc = NewGroupService(f.groups)
	return f
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) group(t *testing.T, slug string) *model.Group {
	t.Helper()
	g, errs, err := f.groupSvc.Create(context.Background(), &form.GroupForm{Title: slug, Slug: slug, Description: "d"})
	require.NoError(t, err)
	require.Nil(t, errs)
	return g
}

var gifBytes = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00,
	0x21, 0xf9, 0x04, 0x01, 0x0a, 0x00, 0x01, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x4c, 0x01, 0x00, 0x3b,
}
