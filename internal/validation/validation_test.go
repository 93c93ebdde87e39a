package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "userauth/internal/errors"
)

type sample struct {
	Name  string `json:"name" validate:"required,min=3,max=100"`
	Email string `json:"email" validate:"required,email"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantMsg string
	}{
		{"valid", sample{Name: "Ann", Email: "ann@x.com"}, ""},
		{"missing name", sample{Email: "ann@x.com"}, "name is required"},
		{"short name", sample{Name: "An", Email: "ann@x.com"}, "name must be at least 3 characters"},
		{"long name", sample{Name: strings.Repeat("a", 101), Email: "ann@x.com"}, "name must be at most 100 characters"},
		{"bad email", sample{Name: "Ann", Email: "ann-at-x"}, "Invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestStruct_CountsRunes(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "Zoë", Email: "zoe@x.com"}))
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("ann@x.com", "email"))
	assert.ErrorIs(t, Var("nope", "email"), apperrors.ErrInvalidEmail)
	assert.ErrorIs(t, Var("123", "uuid"), apperrors.ErrInvalidUserID)
}

func TestDescribe_PassesThroughOtherErrors(t *testing.T) {
	other := errors.New("boom")
	assert.Equal(t, other, Describe(other))
	assert.NoError(t, Describe(nil))
}
