package screener

import "time"

// pacer enforces the soft request-rate ceiling: after every batch of
// completed symbol tasks the collecting loop pauses, which backpressures the
// whole worker pool independent of its size.
type pacer struct {
	batch     int
	pause     time.Duration
	completed int
	pauses    int

	sleep func(time.Duration)
}

func newPacer(batch int, pause time.Duration) *pacer {
	return &pacer{batch: batch, pause: pause, sleep: time.Sleep}
}

// Completed records one finished task and pauses when a full batch has been
// reached.
func (p *pacer) Completed() {
	if p.batch <= 0 || p.pause <= 0 {
		return
	}
	p.completed++
	if p.completed%p.batch == 0 {
		p.pauses++
		p.sleep(p.pause)
	}
}

// Pauses returns how many enforced pauses have occurred.
func (p *pacer) Pauses() int { return p.pauses }
