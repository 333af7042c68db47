package cli

import (
	"bytes"
	"sync"
	"time"
)

const (
	waitFor = 3 * time.Second
	tick    = 20 * time.Millisecond
)

// syncBuffer lets a test poll output written by a command running in
// another goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
