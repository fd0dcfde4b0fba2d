package main

import (
	"io"
	"sync"
)

// lockedWriter serializes writes so the job logger and the progress printer
// can share one stream without interleaving lines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
