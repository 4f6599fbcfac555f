package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=3"`
}

type postForm struct {
	Title  string `validate:"required,max=5"`
	ImgURL string `validate:"required,url"`
}

func TestFieldErrors_MapsEachField(t *testing.T) {
	v := validator.New()

	err := v.Struct(registerForm{Email: "not-an-email", Password: "pw"})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "Name is required", fields["name"])
	assert.Equal(t, "Email must be a valid email", fields["email"])
	assert.Equal(t, "Password must be at least 3 characters", fields["password"])
}

func TestFieldErrors_UsesFormInputNames(t *testing.T) {
	v := validator.New()

	err := v.Struct(postForm{Title: "far too long", ImgURL: "nope"})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "Blog post title must be at most 5 characters", fields["title"])
	assert.Equal(t, "Blog image URL must be a valid URL", fields["img_url"])
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	fields := FieldErrors(errors.New("EOF"))
	assert.Equal(t, map[string]string{"form": "EOF"}, fields)
}
