package store

import "strings"

// Kind classifies a persistence failure.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindAlreadyExists
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	default:
		return "store error"
	}
}

// Error reports a failed lookup or write of one record. Key names the
// record ("ebook bk_7hq2m9xkd3ra", "path /books/Dune.epub") when known.
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Key != "" {
		b.WriteString(e.Key)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is works against the
// sentinels whatever the key.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
)

// NotFound reports a missing record.
func NotFound(key string) *Error {
	return &Error{Kind: KindNotFound, Key: key}
}

// AlreadyExists reports a write that collided with an existing record.
func AlreadyExists(key string, cause error) *Error {
	return &Error{Kind: KindAlreadyExists, Key: key, Err: cause}
}
