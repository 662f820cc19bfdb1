package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/pack/internal/ui/output"
	"go.trai.ch/pack/internal/ui/style"
)

// TargetKey is the attribute that names the build target a record belongs to.
// The pretty handler prints it as the same "[name]" prefix the build output uses.
const TargetKey = "target"

// PrettyHandler is a slog.Handler that prints one coloured line per record,
// prefixed with the target name when the record carries one and with an icon
// for warnings and errors.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	target string
	attrs  []slog.Attr
	group  string
}

// NewPrettyHandler creates a PrettyHandler writing to w, or stderr when w is nil.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record.
//
//nolint:gocritic // slog.Handler requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	target := h.target
	parts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		parts = append(parts, formatAttr(h.group, attr))
	}
	r.Attrs(func(attr slog.Attr) bool {
		if h.group == "" && attr.Key == TargetKey {
			target = attr.Value.String()
			return true
		}
		parts = append(parts, formatAttr(h.group, attr))
		return true
	})

	msg, color := decorate(r.Level, r.Message)
	if len(parts) > 0 {
		msg += " " + strings.Join(parts, " ")
	}

	line := h.paint(msg, color)
	if target != "" {
		line = h.paint("["+target+"]", style.TargetColor(target)) + " " + line
	}
	_, err := h.out.WriteString(line + "\n")
	return err
}

// WithAttrs returns a handler that appends attrs to every record. A target
// attribute outside any group becomes the handler's prefix.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, attr := range attrs {
		if h.group == "" && attr.Key == TargetKey {
			c.target = attr.Value.String()
			continue
		}
		c.attrs = append(c.attrs, attr)
	}
	return c
}

// WithGroup returns a handler that prefixes attribute keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	c := h.clone()
	c.group = name
	return c
}

func (h *PrettyHandler) clone() *PrettyHandler {
	return &PrettyHandler{
		out:    h.out,
		level:  h.level,
		target: h.target,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		group:  h.group,
	}
}

func (h *PrettyHandler) paint(s string, color lipgloss.Color) string {
	return h.out.String(s).Foreground(termenv.RGBColor(string(color))).String()
}

// decorate prepends the level icon and picks the message colour.
func decorate(level slog.Level, msg string) (string, lipgloss.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross + " " + msg, style.Red
	case level >= slog.LevelWarn:
		return style.Warning + " " + msg, style.Yellow
	default:
		return msg, style.Slate
	}
}

func formatAttr(group string, attr slog.Attr) string {
	key := attr.Key
	if group != "" {
		key = group + "." + key
	}
	return key + "=" + attr.Value.String()
}
