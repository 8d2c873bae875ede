/*package logging contains the small amount of shared state ares uses to
decide how chatty it should be, along with a few reporting helpers.*/
package logging

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/pbnjay/memory"
)

type Flag int

const (
	Nil Flag = iota
	Performance
	Debug
)

// This is handled this way so that GlobalConfig doesn't need to be passed to
// literally every function in the project.
var (
	Mode Flag = Nil
)

// MemString returns a string containing various statistics on the current
// memory usage of ares.
func MemString() string {
	ms := runtime.MemStats{}
	runtime.ReadMemStats(&ms)
	return fmt.Sprintf(
		"Alloc - %s; Sys - %s; Integrated - %s; Machine - %s",
		humanize.IBytes(ms.Alloc), humanize.IBytes(ms.Sys),
		humanize.IBytes(ms.TotalAlloc), humanize.IBytes(memory.TotalMemory()),
	)
}

// Progress reports the completion of a long loop (table generation, mostly)
// in steps of 10%. It is safe to call Update from multiple goroutines.
type Progress struct {
	name string
	w io.Writer
	total, done int64
	lastDecile int64
	mtx sync.Mutex
}

// NewProgress returns a Progress which writes to w. A nil writer or a total
// of zero results in a Progress that reports nothing.
func NewProgress(name string, total int, w io.Writer) *Progress {
	return &Progress{ name: name, w: w, total: int64(total) }
}

// Update marks n more units of work as completed.
func (p *Progress) Update(n int) {
	if p == nil { return }
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.done += int64(n)
	if p.w == nil || p.total <= 0 { return }

	decile := 10 * p.done / p.total
	if decile > p.lastDecile {
		p.lastDecile = decile
		fmt.Fprintf(p.w, "%s: %3d%% (%s/%s)\n", p.name, 10*decile,
			humanize.Comma(p.done), humanize.Comma(p.total))
	}
}

// Done returns the number of completed units of work.
func (p *Progress) Done() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return int(p.done)
}
