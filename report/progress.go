package report

import (
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// Progress renders one progress bar per phase. It satisfies the progress
// tracker interfaces of the collector and the extractor.
type Progress struct {
	out io.Writer

	mu      sync.Mutex
	writer  progress.Writer
	tracker *progress.Tracker
}

// NewProgress creates a Progress that draws on out (usually stderr)
func NewProgress(out io.Writer) *Progress {
	return &Progress{out: out}
}

// Start begins a new bar, finishing any bar that is still running
func (p *Progress) Start(message string, total int) {
	p.Done()

	p.mu.Lock()
	defer p.mu.Unlock()

	pw := progress.NewWriter()
	pw.SetOutputWriter(p.out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(40)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = true

	tracker := &progress.Tracker{Message: message, Total: int64(total), Units: progress.UnitsDefault}
	pw.AppendTracker(tracker)

	go pw.Render()
	for i := 0; i < 50 && !pw.IsRenderInProgress(); i++ {
		time.Sleep(time.Millisecond)
	}

	p.writer = pw
	p.tracker = tracker
}

// Increment advances the current bar by one
func (p *Progress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tracker != nil {
		p.tracker.Increment(1)
	}
}

// Done completes the current bar and waits for the final render
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return
	}

	p.tracker.MarkAsDone()
	p.writer.Stop()
	for i := 0; i < 50 && p.writer.IsRenderInProgress(); i++ {
		time.Sleep(10 * time.Millisecond)
	}

	p.writer = nil
	p.tracker = nil
}
