package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// renderInterval is how often the bar is redrawn while a run is active.
const renderInterval = 100 * time.Millisecond

// Renderer redraws the pipeline progress bar in place while the run is
// active. Render must be started before Stop is called.
type Renderer struct {
	bar      *Bar
	output   io.Writer
	done     chan struct{}
	finished chan struct{}
	stopOnce sync.Once
}

// NewRenderer creates a Renderer that draws bar to output.
func NewRenderer(bar *Bar, output io.Writer) *Renderer {
	return &Renderer{
		bar:      bar,
		output:   output,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Render starts the rendering loop, redrawing the bar on each tick until
// Stop is called. The bar string begins with a carriage return, so each
// draw overwrites the previous one on a terminal.
func (r *Renderer) Render() {
	defer close(r.finished)

	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			_, _ = fmt.Fprint(r.output, r.bar.String())
		}
	}
}

// Stop ends the rendering loop, waits for it to exit, and draws the final
// bar state followed by a newline so later output starts on its own line.
func (r *Renderer) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		<-r.finished

		_, _ = fmt.Fprintln(r.output, r.bar.String())
	})
}
