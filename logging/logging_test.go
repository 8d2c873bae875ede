package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress("tau", 100, buf)

	wg := sync.WaitGroup{}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ { p.Update(1) }
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, p.Done())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, lines[len(lines) - 1], "100%")
}

func TestProgressSilent(t *testing.T) {
	p := NewProgress("tau", 0, nil)
	p.Update(5)
	assert.Equal(t, 5, p.Done())

	var nilProgress *Progress
	nilProgress.Update(1)
}

func TestMemString(t *testing.T) {
	s := MemString()
	assert.Contains(t, s, "Alloc")
	assert.Contains(t, s, "Machine")
}
