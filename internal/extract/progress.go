package extract

import "sync"

// Progress tracks extraction completion as a whole-number percentage.
// The percentage is monotone non-decreasing and reaches exactly 100 on
// successful completion.
type Progress struct {
	mu      sync.Mutex
	percent int
	onTick  func(int)
}

// NewProgress returns a Progress at zero percent. The optional onTick
// callback fires whenever the percentage advances.
func NewProgress(onTick func(int)) *Progress {
	return &Progress{onTick: onTick}
}

// SetPercent advances the percentage. Values below the current one or
// outside 0-100 are clamped so progress never moves backwards.
func (p *Progress) SetPercent(v int) {
	p.mu.Lock()
	if v > 100 {
		v = 100
	}
	if v <= p.percent {
		p.mu.Unlock()
		return
	}
	p.percent = v
	cb := p.onTick
	p.mu.Unlock()

	if cb != nil {
		cb(v)
	}
}

// Percent returns the current percentage
func (p *Progress) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent
}
