package rdb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yatube/internal/model"
	"yatube/internal/repository"
	"yatube/pkg/config"
)

// Runs against a live database when YATUBE_TEST_DATABASE_DSN is set.
// YATUBE_TEST_DATABASE_DRIVER picks mysql (default) or postgres.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("YATUBE_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("YATUBE_TEST_DATABASE_DSN not set")
	}
	driver := os.Getenv("YATUBE_TEST_DATABASE_DRIVER")
	if driver == "" {
		driver = "mysql"
	}
	db, err := Open(&config.DatabaseConfig{
		Driver:       driver,
		DSN:          dsn,
		MaxIdleConns: 2,
		MaxOpenConns: 4,
		AutoMigrate:  true,
	}, "ERROR")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func createUser(t *testing.T, r *UserRepository, prefix string) *model.User {
	t.Helper()
	name := fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
	u := &model.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func TestFollowRepository(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := &UserRepository{DB: db}
	follows := &FollowRepository{DB: db}

	a := createUser(t, users, "fa")
	b := createUser(t, users, "fb")

	changed, err := follows.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = follows.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	var n int64
	require.NoError(t, db.Model(&model.Follow{}).Where("user_id = ? AND author_id = ?", a.ID, b.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	changed, err = follows.Unfollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = follows.Unfollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestPostRepository(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := &UserRepository{DB: db}
	posts := &PostRepository{DB: db}
	comments := &CommentRepository{DB: db}

	author := createUser(t, users, "pa")
	p := &model.Post{Text: "hello", AuthorID: author.ID}
	require.NoError(t, posts.Create(ctx, p))

	got, err := posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, author.Username, got.Author.Username)
	assert.Nil(t, got.Group)

	got.Text = "edited"
	require.NoError(t, posts.Update(ctx, got))

	list, err := posts.List(ctx, repository.PostFilter{AuthorID: author.ID}, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "edited", list[0].Text)

	require.NoError(t, comments.Create(ctx, &model.Comment{PostID: p.ID, AuthorID: author.ID, Text: "c"}))
	cs, err := comments.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, cs, 1)

	_, err = posts.FindByID(ctx, 0)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLogLevel("DEBUG"))
	assert.Equal(t, logger.Warn, gormLogLevel("info"))
	assert.Equal(t, logger.Silent, gormLogLevel("ERROR"))
	assert.Equal(t, logger.Warn, gormLogLevel("nonsense"))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "sqlite"}, "INFO")
	assert.Error(t, err)
}

type ctxKey struct{}

func TestFollowFeedSubqueryKeepsContext(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=127.0.0.1 user=yatube dbname=yatube sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true, Logger: logger.Discard})
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), ctxKey{}, "request")
	repo := &PostRepository{DB: db}
	q := repo.filtered(ctx, repository.PostFilter{GroupID: 3, FollowerID: 7})
	assert.Equal(t, ctx, q.Statement.Context)

	sub := followedAuthors(q, 7)
	assert.Equal(t, ctx, sub.Statement.Context)

	stmt := q.Find(&[]model.Post{}).Statement
	sql := stmt.SQL.String()
	assert.Contains(t, sql, "group_id = $1")
	assert.Contains(t, sql, "author_id IN (SELECT")
	assert.Contains(t, sql, `FROM "follow" WHERE user_id = $2`)
}
