package form

import (
	"strconv"
	"strings"
)

type PostForm struct {
	Text  string `form:"text" validate:"required"`
	Group string `form:"group" validate:"omitempty,pk"`
}

func (f *PostForm) Clean() {
	f.Text = strings.TrimSpace(f.Text)
	f.Group = strings.TrimSpace(f.Group)
}

// GroupID returns nil for "no group"
func (f *PostForm) GroupID() *uint64 {
	if f.Group == "" {
		return nil
	}
	id, err := strconv.ParseUint(f.Group, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

type CommentForm struct {
	Text string `form:"text" validate:"required"`
}

func (f *CommentForm) Clean() {
	f.Text = strings.TrimSpace(f.Text)
}

type SignupForm struct {
	Username string `form:"username" validate:"required,max=150,username"`
	Email    string `form:"email" validate:"required,max=254,email"`
	Password string `form:"password" validate:"required,min=8,max=128"`
}

func (f *SignupForm) Clean() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

func (f *LoginForm) Clean() {
	f.Username = strings.TrimSpace(f.Username)
}

type GroupForm struct {
	Title       string `form:"title" validate:"required,max=200"`
	Slug        string `form:"slug" validate:"required,max=50,slug"`
	Description string `form:"description" validate:"required"`
}

func (f *GroupForm) Clean() {
	f.Title = strings.TrimSpace(f.Title)
	f.Slug = strings.TrimSpace(f.Slug)
	f.Description = strings.TrimSpace(f.Description)
}
