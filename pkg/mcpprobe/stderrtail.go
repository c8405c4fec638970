package mcpprobe

import (
	"strings"
	"sync"
)

const (
	// stderrTailChunks bounds how many write chunks the tail retains before
	// dropping the oldest.
	stderrTailChunks = 50
	// stderrTailChars bounds how much decoded text Tail returns.
	stderrTailChars = 2000
)

// StderrTail captures a bounded tail of a child process's stderr stream so
// root-cause diagnostics (missing dependency, bad argument) can be attached
// to failure reports. It implements io.Writer and is safe for the concurrent
// writes an exec pipe produces.
type StderrTail struct {
	mu     sync.Mutex
	chunks [][]byte
}

// NewStderrTail returns an empty tail ready to be wired to exec.Cmd.Stderr.
func NewStderrTail() *StderrTail {
	return &StderrTail{}
}

// Write appends a copy of p, dropping the oldest chunk once the ring is full.
// It never fails; the write side must not be able to stall the child.
func (t *StderrTail) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)
	t.mu.Lock()
	t.chunks = append(t.chunks, buf)
	if len(t.chunks) > stderrTailChunks {
		t.chunks = t.chunks[len(t.chunks)-stderrTailChunks:]
	}
	t.mu.Unlock()
	return len(p), nil
}

// Tail returns up to the last stderrTailChars characters captured so far,
// with surrounding whitespace trimmed.
func (t *StderrTail) Tail() string {
	t.mu.Lock()
	var b strings.Builder
	for _, chunk := range t.chunks {
		b.Write(chunk)
	}
	t.mu.Unlock()
	s := b.String()
	if len(s) > stderrTailChars {
		s = s[len(s)-stderrTailChars:]
	}
	return strings.TrimSpace(s)
}
