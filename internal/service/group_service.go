package service

import (
	"context"
	"errors"
	"fmt"

	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/repository"
)

type GroupService struct {
	groups repository.GroupRepository
}

func NewGroupService(groups repository.GroupRepository) *GroupService {
	return &GroupService{groups: groups}
}

// Create validates f and stores the group; a taken slug is a field error
func (s *GroupService) Create(ctx context.Context, f *form.GroupForm) (*model.Group, form.Errors, error) {
	if errs := form.Validate(f); errs != nil {
		return nil, errs, nil
	}
	g := &model.Group{Title: f.Title, Slug: f.Slug, Description: f.Description}
	if err := s.groups.Create(ctx, g); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			var errs form.Errors
			errs.Add("slug", "Group with this slug already exists.")
			return nil, errs, nil
		}
		return nil, nil, fmt.Errorf("create group: %w", err)
	}
	return g, nil, nil
}

func (s *GroupService) List(ctx context.Context) ([]model.Group, error) {
	return s.groups.List(ctx)
}

// Delete removes the group by slug; its posts lose the group
func (s *GroupService) Delete(ctx context.Context, slug string) error {
	g, err := s.groups.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.groups.Delete(ctx, g.ID)
}
