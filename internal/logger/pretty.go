package logger

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset   = "\033[0m"
	ansiBold    = "\033[1m"
	ansiDim     = "\033[2m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
)

var levelStyles = map[slog.Level]struct{ tag, color string }{
	slog.LevelDebug: {"DBG", ansiMagenta},
	slog.LevelInfo:  {"INF", ansiGreen},
	slog.LevelWarn:  {"WRN", ansiYellow},
	slog.LevelError: {"ERR", ansiRed},
}

// PrettyHandler writes one line per record for people watching a terminal:
//
//	15:04:05 INF ebook added ebook_id=bk_7hq2m9xkd3ra path="/books/a b.epub"
//
// Groups and LogValuer values are flattened into dotted keys. An "error"
// attribute is painted red.
type PrettyHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	color  bool
	prefix string // group path for attrs added later, with trailing dot
	attrs  []byte // pre-rendered WithAttrs output
}

// NewPrettyHandler creates a pretty handler. Only opts.Level is used.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *PrettyHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &PrettyHandler{mu: &sync.Mutex{}, w: w, level: level, color: color}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = h.paint(buf, ansiDim, r.Time.Format(time.TimeOnly))
	buf = append(buf, ' ')

	style, ok := levelStyles[r.Level]
	if !ok {
		style.tag = r.Level.String()
	}
	buf = h.paint(buf, style.color, style.tag)
	buf = append(buf, ' ')
	buf = h.paint(buf, ansiBold, r.Message)
	buf = append(buf, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]byte(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = h.appendAttr(next.attrs, h.prefix, a)
	}
	return &next
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *PrettyHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			buf = h.appendAttr(buf, prefix, ga)
		}
		return buf
	}

	color := ansiCyan
	if a.Key == "error" {
		color = ansiRed
	}
	buf = append(buf, ' ')
	return h.paint(buf, color, prefix+a.Key+"="+formatValue(a.Value))
}

func (h *PrettyHandler) paint(buf []byte, color, s string) []byte {
	if !h.color || color == "" {
		return append(buf, s...)
	}
	buf = append(buf, color...)
	buf = append(buf, s...)
	return append(buf, ansiReset...)
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindString, slog.KindAny:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\"=") || !strconv.CanBackquote(s) {
			return strconv.Quote(s)
		}
		return s
	default:
		return v.String()
	}
}
