// Package telemetry bridges OpenTelemetry spans to the build renderer.
package telemetry

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the buffered output size that forces a flush.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the interval after which buffered output is flushed.
	DefaultTimeLimit = 50 * time.Millisecond
)

var errBatcherClosed = errors.New("target output is closed")

// Chunk is a piece of one target's output.
type Chunk struct {
	SpanID string
	Target string
	Data   []byte
}

// BatchProcessor collects the output of one target (compiler warnings, hook
// output) and hands it on in chunks, either when the time limit passes or when
// the buffer reaches the size limit. Size-triggered chunks end at the last
// complete line, so a line is only split when it is longer than the limit.
// It is safe for concurrent use.
type BatchProcessor struct {
	spanID    string
	target    string
	sizeLimit int
	timeLimit time.Duration
	onFlush   func(Chunk)

	mu      sync.Mutex
	buffer  bytes.Buffer
	written int
	ticker  *time.Ticker
	stopCh  chan struct{}
	closed  bool
}

// NewBatchProcessor starts a processor for the target built under spanID.
// Non-positive limits select the defaults. Close must be called to stop it.
func NewBatchProcessor(
	spanID, target string,
	sizeLimit int,
	timeLimit time.Duration,
	onFlush func(Chunk),
) *BatchProcessor {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	bp := &BatchProcessor{
		spanID:    spanID,
		target:    target,
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
		ticker:    time.NewTicker(timeLimit),
		stopCh:    make(chan struct{}),
	}
	go bp.run()
	return bp
}

// Write buffers p. Reaching the size limit flushes every complete line.
func (bp *BatchProcessor) Write(p []byte) (int, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return 0, errBatcherClosed
	}

	n, _ := bp.buffer.Write(p)
	bp.written += n
	if bp.buffer.Len() >= bp.sizeLimit {
		bp.flushLinesLocked()
		bp.ticker.Reset(bp.timeLimit)
	}
	return n, nil
}

// Written returns the number of output bytes the target produced.
func (bp *BatchProcessor) Written() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.written
}

// Flush hands everything buffered to the callback, partial line included.
func (bp *BatchProcessor) Flush() {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if !bp.closed {
		bp.emitLocked(bp.buffer.Len())
	}
}

// Close stops the ticker and flushes what is left. It is idempotent.
func (bp *BatchProcessor) Close() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return nil
	}
	bp.closed = true
	close(bp.stopCh)
	bp.emitLocked(bp.buffer.Len())
	return nil
}

func (bp *BatchProcessor) run() {
	for {
		select {
		case <-bp.ticker.C:
			bp.Flush()
		case <-bp.stopCh:
			bp.ticker.Stop()
			return
		}
	}
}

// flushLinesLocked emits up to the last newline, or everything when the
// buffer holds a single oversized line.
func (bp *BatchProcessor) flushLinesLocked() {
	n := bytes.LastIndexByte(bp.buffer.Bytes(), '\n') + 1
	if n == 0 {
		n = bp.buffer.Len()
	}
	bp.emitLocked(n)
}

// emitLocked must be called with mu held. The callback runs under the lock
// so chunks arrive in write order.
func (bp *BatchProcessor) emitLocked(n int) {
	if n == 0 {
		return
	}

	data := bytes.Clone(bp.buffer.Next(n))
	if bp.onFlush != nil {
		bp.onFlush(Chunk{SpanID: bp.spanID, Target: bp.target, Data: data})
	}
}
