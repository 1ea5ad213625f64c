package utils

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

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

func TestSpinner_StartStop(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner("working", time.Millisecond, false)
	s.SetWriter(out)
	s.StopMsg = "done"

	s.Start()
	s.SetProgress(1, 4)
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	// a second stop must not block or panic
	s.Stop()

	got := out.String()
	assert.True(t, strings.Contains(got, "working"))
	assert.True(t, strings.HasSuffix(got, "done"))
}
