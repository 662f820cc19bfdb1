// Package linear renders build progress as prefixed, line-buffered output.
package linear

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/pack/internal/ui/output"
	"go.trai.ch/pack/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer. Target output goes to stdout with a
// "[name]" prefix; lifecycle lines and the summary go to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output
	json   bool

	mu      sync.Mutex
	targets map[string]*targetState
}

type targetState struct {
	name      string
	startTime time.Time
	buf       bytes.Buffer
}

// NewRenderer creates a Renderer. Nil writers default to the process streams.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		output:  output.New(stderr),
		targets: make(map[string]*targetState),
	}
}

// WithJSONSummary makes OnSummary write the results as JSON to stdout
// instead of the human-readable table. Target output moves to stderr so
// stdout carries only the JSON document.
func (r *Renderer) WithJSONSummary(enable bool) *Renderer {
	r.json = enable
	return r
}

// OnPlanEmit prints the planned targets.
func (r *Renderer) OnPlanEmit(targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "Building %d target(s): %s\n", len(targets), strings.Join(targets, ", "))
}

// OnTargetStart prints a start line for the target.
func (r *Renderer) OnTargetStart(spanID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.targets[spanID] = &targetState{name: name, startTime: startTime}
	_, _ = fmt.Fprintf(r.stderr, "%s Building...\n", r.prefix(name))
}

// OnTargetLog prints complete lines of target output and keeps a trailing
// partial line buffered.
func (r *Renderer) OnTargetLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.targets[spanID]
	if !ok {
		return
	}

	st.buf.Write(data)
	for {
		i := bytes.IndexByte(st.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := st.buf.Next(i + 1)
		r.printLineLocked(st.name, line)
	}
}

// OnTargetComplete flushes the target's output and prints its outcome.
func (r *Renderer) OnTargetComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.targets[spanID]
	if !ok {
		return
	}
	r.flushLocked(st)
	delete(r.targets, spanID)

	duration := endTime.Sub(st.startTime).Round(time.Millisecond)
	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.RGBColor(string(style.Red))).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", r.prefix(st.name), symbol, duration, err)
		return
	}
	symbol := r.output.String(style.Check).Foreground(termenv.RGBColor(string(style.Green))).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s Built in %v\n", r.prefix(st.name), symbol, duration)
}

// OnSummary prints one block per result, in result order.
func (r *Renderer) OnSummary(results []domain.BuildResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.json {
		enc := json.NewEncoder(r.stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(results)
		return
	}

	width := 0
	failed := 0
	for i := range results {
		width = max(width, len(results[i].Target))
		if !results[i].Succeeded() {
			failed++
		}
	}

	_, _ = fmt.Fprintf(r.stderr, "\nSummary: %d succeeded, %d failed\n", len(results)-failed, failed)
	for i := range results {
		r.printResultLocked(&results[i], width)
	}
}

func (r *Renderer) printResultLocked(res *domain.BuildResult, width int) {
	name := fmt.Sprintf("%-*s", width, res.Target)
	duration := res.Duration.Round(time.Millisecond)

	if res.Succeeded() {
		symbol := r.output.String(style.Check).Foreground(termenv.RGBColor(string(style.Green))).String()
		_, _ = fmt.Fprintf(r.stderr, "  %s %s  %d artifact(s)  %s  %v\n", symbol, name, len(res.Artifacts), res.Digest, duration)
	} else {
		symbol := r.output.String(style.Cross).Foreground(termenv.RGBColor(string(style.Red))).String()
		_, _ = fmt.Fprintf(r.stderr, "  %s %s  %s  %v\n", symbol, name, res.Failure, duration)
		for _, d := range res.Diagnostics {
			for line := range strings.Lines(d) {
				_, _ = fmt.Fprintf(r.stderr, "      %s\n", strings.TrimRight(line, "\r\n"))
			}
		}
	}

	for _, w := range res.Warnings {
		_, _ = fmt.Fprintf(r.stderr, "      %s %s\n", style.Warning, w)
	}
	if res.HookError != "" {
		_, _ = fmt.Fprintf(r.stderr, "      %s on-success hook: %s\n", style.Warning, res.HookError)
	}
}

// Flush prints any partial lines still buffered.
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, st := range r.targets {
		r.flushLocked(st)
	}
	return nil
}

func (r *Renderer) flushLocked(st *targetState) {
	if st.buf.Len() > 0 {
		r.printLineLocked(st.name, st.buf.Bytes())
		st.buf.Reset()
	}
}

// printLineLocked must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimRight(line, "\r\n")
	if len(line) == 0 {
		return
	}
	out := r.stdout
	if r.json {
		out = r.stderr
	}
	_, _ = fmt.Fprintf(out, "%s %s\n", r.prefix(name), line)
}

func (r *Renderer) prefix(name string) string {
	color := style.TargetColor(name)
	return r.output.String("[" + name + "]").Foreground(termenv.RGBColor(string(color))).String()
}
