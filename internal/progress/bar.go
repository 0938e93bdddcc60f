// Package progress renders a single-line terminal progress indicator for
// the pipeline run.
package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Bar tracks progress through the pipeline steps with a visual bar,
// percentage, and current step message. It uses mutex locking to handle
// concurrent updates.
type Bar struct {
	total       int64
	current     int64
	width       int
	mu          sync.Mutex
	message     string
	stepMessage string
	stepStart   time.Time
	start       time.Time
}

// NewBar creates a progress bar with a total value to track progress
// against, a width in characters, and an overall operation message.
func NewBar(total int64, width int, message string) *Bar {
	return &Bar{
		total:     total,
		width:     width,
		message:   message,
		stepStart: time.Now(),
		start:     time.Now(),
	}
}

// SetStep updates the current step description and progress percentage,
// resetting the step timer.
func (b *Bar) SetStep(message string, current int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stepMessage = message
	b.stepStart = time.Now()

	b.current = current
	if b.current > b.total {
		b.current = b.total
	}
}

// String renders the bar with percentage, step message and durations.
func (b *Bar) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	percent := float64(b.current) / float64(b.total)
	filled := int(percent * float64(b.width))
	bar := strings.Repeat("=", filled) + strings.Repeat("-", b.width-filled)

	stepDuration := time.Since(b.stepStart).Round(time.Second)
	overallDuration := time.Since(b.start).Round(time.Second)

	return fmt.Sprintf("\r%s [%s] %.1f%% | %s (%s) | Overall: %s",
		b.message, bar, percent*100, b.stepMessage, stepDuration, overallDuration)
}
