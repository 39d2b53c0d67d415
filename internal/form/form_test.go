package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostForm(t *testing.T) {
	tests := []struct {
		name    string
		form    PostForm
		invalid []string
	}{
		{name: "valid", form: PostForm{Text: "hello"}},
		{name: "with group", form: PostForm{Text: "hello", Group: "3"}},
		{name: "blank text", form: PostForm{Text: "   "}, invalid: []string{"text"}},
		{name: "bad group", form: PostForm{Text: "x", Group: "cats"}, invalid: []string{"group"}},
		{name: "both", form: PostForm{Group: "x"}, invalid: []string{"text", "group"}},
		{name: "group overflows uint64", form: PostForm{Text: "x", Group: "99999999999999999999"}, invalid: []string{"group"}},
		{name: "negative group", form: PostForm{Text: "x", Group: "-1"}, invalid: []string{"group"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.form)
			var fields []string
			for _, fe := range errs {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.invalid, fields)
		})
	}
}

func TestPostFormGroupID(t *testing.T) {
	f := PostForm{Text: "x", Group: " 7 "}
	require.Nil(t, Validate(&f))
	require.NotNil(t, f.GroupID())
	assert.Equal(t, uint64(7), *f.GroupID())

	f = PostForm{Text: "x"}
	assert.Nil(t, f.GroupID())
}

func TestSignupForm(t *testing.T) {
	f := SignupForm{Username: "bad name", Email: "nope", Password: "short"}
	errs := Validate(&f)
	require.Len(t, errs, 3)
	assert.True(t, errs.Has("username"))
	assert.Equal(t, []string{"Enter a valid email address."}, errs.For("email"))
	assert.True(t, errs.Has("password"))
	assert.Contains(t, errs.Error(), "password:")

	f = SignupForm{Username: "leo", Email: " Leo@Example.com ", Password: "long-enough"}
	assert.Nil(t, Validate(&f))
	assert.Equal(t, "leo@example.com", f.Email)
}

func TestGroupForm(t *testing.T) {
	f := GroupForm{Title: "Cats", Slug: "cats and dogs", Description: "d"}
	errs := Validate(&f)
	require.Len(t, errs, 1)
	assert.Equal(t, "slug", errs[0].Field)

	f.Slug = "cats_and-dogs"
	assert.Nil(t, Validate(&f))
}

func TestErrorsAdd(t *testing.T) {
	var errs Errors
	errs.Add("image", "Upload a valid image.")
	assert.Equal(t, []string{"Upload a valid image."}, errs.For("image"))
	assert.False(t, errs.Has("text"))
}
