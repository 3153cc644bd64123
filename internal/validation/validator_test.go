package validation_test

import (
	"testing"

	domainerrors "github.com/ghiridhars/ebook-organizer/internal/errors"
	"github.com/ghiridhars/ebook-organizer/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	ID       string `json:"id" validate:"required"`
	Category string `json:"category" validate:"omitempty,category"`
	SubGenre string `json:"sub_genre" validate:"omitempty,subgenre"`
	Limit    int    `json:"limit" validate:"gte=0,lte=1000"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(testRequest{ID: "book-1"}))
	assert.NoError(t, v.Validate(testRequest{ID: "book-1", Category: "Fiction", SubGenre: "Fantasy", Limit: 10}))
	assert.NoError(t, v.Validate(testRequest{ID: "book-1", SubGenre: "Other"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       testRequest
		wantField string
	}{
		{"missing id", testRequest{}, "id"},
		{"unknown category", testRequest{ID: "b", Category: "Cookbooks"}, "category"},
		{"unknown sub-genre", testRequest{ID: "b", SubGenre: "Space Westerns"}, "sub_genre"},
		{"limit too large", testRequest{ID: "b", Limit: 5000}, "limit"},
		{"negative limit", testRequest{ID: "b", Limit: -1}, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			assert.ErrorIs(t, err, domainerrors.ErrValidation)
			assert.Contains(t, err.Error(), "invalid argument")
			assert.Contains(t, err.Error(), tt.wantField)

			var de *domainerrors.Error
			require.ErrorAs(t, err, &de)
			details, ok := de.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{ID: "b", Category: "Nope"})
	require.Error(t, err)

	assert.Contains(t, err.Error(), "category")
	assert.NotContains(t, err.Error(), "Category ")
}

func TestValidator_MessagesAreSorted(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{Category: "Nope"})
	require.Error(t, err)
	assert.Equal(t, `invalid argument: category "Nope" is not a category; id is required`, err.Error())
}
