// Package id generates identifiers for stored records and runs.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// EbookPrefix prefixes ebook record IDs.
	EbookPrefix = "bk"

	// alphabet leaves out look-alike characters (0/o, 1/l/i) so ids can be
	// read off a table and typed back on the command line.
	alphabet = "23456789abcdefghjkmnpqrstuvwxyz"
	size     = 12
)

// NewEbookID returns a fresh ebook record ID such as "bk_7hq2m9xkd3ra".
func NewEbookID() (string, error) {
	s, err := gonanoid.Generate(alphabet, size)
	if err != nil {
		return "", fmt.Errorf("generate ebook id: %w", err)
	}
	return EbookPrefix + "_" + s, nil
}

// IsEbookID reports whether s has the shape NewEbookID produces.
func IsEbookID(s string) bool {
	rest, ok := strings.CutPrefix(s, EbookPrefix+"_")
	if !ok || len(rest) != size {
		return false
	}
	for _, r := range rest {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}

// NewRunID returns a random UUID naming one reorganization run.
func NewRunID() string {
	return uuid.NewString()
}
