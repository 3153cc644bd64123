package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ghiridhars/ebook-organizer/internal/store"
)

func TestError_Message(t *testing.T) {
	assert.Equal(t, "not found", store.ErrNotFound.Error())
	assert.Equal(t, "ebook bk_7hq2m9xkd3ra: not found", store.NotFound("ebook bk_7hq2m9xkd3ra").Error())

	cause := errors.New("constraint failed")
	assert.Equal(t, "path /books/Dune.epub: already exists: constraint failed",
		store.AlreadyExists("path /books/Dune.epub", cause).Error())
}

func TestError_Is(t *testing.T) {
	cause := errors.New("constraint failed")
	err := fmt.Errorf("create: %w", store.AlreadyExists("ebook x", cause))

	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	var se *store.Error
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, "ebook x", se.Key)
}
