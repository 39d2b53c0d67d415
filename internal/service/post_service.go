package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository"
	"yatube/internal/storage"
	"yatube/pkg/logging"
	"yatube/pkg/telemetry"
)

type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	groups   repository.GroupRepository
	follows  repository.FollowRepository
	images   storage.ImageStore
	perPage  int
	log      *zap.Logger
}

// Feed is one page of posts
type Feed struct {
	Page  pkg.Page
	Posts []model.Post
}

// Profile is an author's feed as seen by a viewer
type Profile struct {
	Author    *model.User
	Feed      *Feed
	PostCount int64
	Following bool
}

// PostDetail is a single post with its comments oldest first
type PostDetail struct {
	Post      *model.Post
	PostCount int64
	Comments  []model.Comment
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	groups repository.GroupRepository,
	follows repository.FollowRepository,
	images storage.ImageStore,
	perPage int,
) *PostService {
	if perPage <= 0 {
		perPage = pkg.DefaultPerPage
	}
	return &PostService{
		posts:    posts,
		comments: comments,
		users:    users,
		groups:   groups,
		follows:  follows,
		images:   images,
		perPage:  perPage,
		log:      logging.WithComponent("post_service"),
	}
}

func (s *PostService) feed(ctx context.Context, f repository.PostFilter, rawPage string) (*Feed, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostService.feed")
	defer span.End()

	count, err := s.posts.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	page := pkg.NewPage(count, s.perPage, rawPage)
	list, err := s.posts.List(ctx, f, page.Offset(), page.Limit())
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &Feed{Page: page, Posts: list}, nil
}

// Index all posts, newest first
func (s *PostService) Index(ctx context.Context, rawPage string) (*Feed, error) {
	return s.feed(ctx, repository.PostFilter{}, rawPage)
}

// GroupFeed posts of the group with this slug
func (s *PostService) GroupFeed(ctx context.Context, slug, rawPage string) (*model.Group, *Feed, error) {
	group, err := s.groups.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	feed, err := s.feed(ctx, repository.PostFilter{GroupID: group.ID}, rawPage)
	if err != nil {
		return nil, nil, err
	}
	return group, feed, nil
}

// Profile viewerID is 0 for anonymous viewers
func (s *PostService) Profile(ctx context.Context, username string, viewerID uint64, rawPage string) (*Profile, error) {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	feed, err := s.feed(ctx, repository.PostFilter{AuthorID: author.ID}, rawPage)
	if err != nil {
		return nil, err
	}
	p := &Profile{Author: author, Feed: feed, PostCount: feed.Page.Count}
	if viewerID != 0 {
		if p.Following, err = s.follows.IsFollowing(ctx, viewerID, author.ID); err != nil {
			return nil, fmt.Errorf("check follow: %w", err)
		}
	}
	return p, nil
}

// FollowFeed posts by authors the viewer follows
func (s *PostService) FollowFeed(ctx context.Context, viewerID uint64, rawPage string) (*Feed, error) {
	return s.feed(ctx, repository.PostFilter{FollowerID: viewerID}, rawPage)
}

func (s *PostService) Detail(ctx context.Context, id uint64) (*PostDetail, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.posts.Count(ctx, repository.PostFilter{AuthorID: post.AuthorID})
	if err != nil {
		return nil, fmt.Errorf("count author posts: %w", err)
	}
	comments, err := s.comments.ListByPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return &PostDetail{Post: post, PostCount: count, Comments: comments}, nil
}

// Get loads a post without comments
func (s *PostService) Get(ctx context.Context, id uint64) (*model.Post, error) {
	return s.posts.FindByID(ctx, id)
}

func (s *PostService) Groups(ctx context.Context) ([]model.Group, error) {
	return s.groups.List(ctx)
}

// Create validates f and stores a post owned by authorID.
// image may be nil. Field problems come back as form.Errors with a nil error.
func (s *PostService) Create(ctx context.Context, authorID uint64, f *form.PostForm, image io.Reader) (*model.Post, form.Errors, error) {
	post := &model.Post{AuthorID: authorID}
	errs, err := s.apply(ctx, post, f, image)
	if err != nil || errs != nil {
		return nil, errs, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, nil, fmt.Errorf("create post: %w", err)
	}
	s.log.Info("post created", zap.Uint64("post_id", post.ID), zap.Uint64("author_id", authorID))
	return post, nil, nil
}

// Edit applies f to the post. Returns ErrNotAuthor when editorID does not own it.
func (s *PostService) Edit(ctx context.Context, editorID, postID uint64, f *form.PostForm, image io.Reader) (*model.Post, form.Errors, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if post.AuthorID != editorID {
		return post, nil, ErrNotAuthor
	}
	errs, err := s.apply(ctx, post, f, image)
	if err != nil || errs != nil {
		return post, errs, err
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil, nil
}

// apply copies validated fields onto post. Without an upload the image is kept.
func (s *PostService) apply(ctx context.Context, post *model.Post, f *form.PostForm, image io.Reader) (form.Errors, error) {
	errs := form.Validate(f)

	groupID := f.GroupID()
	if groupID != nil && !errs.Has("group") {
		if _, err := s.groups.FindByID(ctx, *groupID); err != nil {
			if !errors.Is(err, model.ErrNotFound) {
				return nil, fmt.Errorf("find group: %w", err)
			}
			errs.Add("group", "Select a valid choice. That choice is not one of the available choices.")
		}
	}
	if errs != nil {
		return errs, nil
	}

	if image != nil {
		key, err := storage.Upload(ctx, s.images, image)
		switch {
		case errors.Is(err, storage.ErrNotImage):
			errs.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
			return errs, nil
		case errors.Is(err, storage.ErrImageTooLarge):
			errs.Add("image", "The uploaded image is too large.")
			return errs, nil
		case err != nil:
			return nil, err
		}
		post.Image = key
	}

	post.Text = f.Text
	post.GroupID = groupID
	post.Group = nil
	return nil, nil
}

// AddComment stores a comment by authorID. Invalid input creates nothing.
func (s *PostService) AddComment(ctx context.Context, authorID, postID uint64, f *form.CommentForm) (*model.Comment, form.Errors, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, nil, err
	}
	if errs := form.Validate(f); errs != nil {
		return nil, errs, nil
	}
	c := &model.Comment{PostID: postID, AuthorID: authorID, Text: f.Text}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil, nil
}

// ImageURL resolves a stored image key for templates
func (s *PostService) ImageURL(key string) string {
	if key == "" || s.images == nil {
		return ""
	}
	return s.images.URL(key)
}
