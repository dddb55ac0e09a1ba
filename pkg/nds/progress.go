package nds

import "sync"

// ProgressSnapshot is the state of an extraction at one point in time.
type ProgressSnapshot struct {
	Completed int
	Total     int
}

// Ratio returns Completed/Total, reporting an empty extraction as complete.
func (s ProgressSnapshot) Ratio() float64 {
	if s.Total == 0 {
		return 1
	}

	return float64(s.Completed) / float64(s.Total)
}

// Progress tracks the number of files an extraction has written.
//
// Subscribers are notified whenever the snapshot changes, never for a write
// that leaves it as it was, and always in the order the changes happened.
type Progress struct {
	notify sync.Mutex // held while subscribers run, orders notifications
	mu     sync.Mutex // guards the fields below

	snap ProgressSnapshot
	subs map[int]func(ProgressSnapshot)
	next int
}

// NewProgress returns a tracker with no work recorded.
func NewProgress() *Progress {
	return &Progress{subs: map[int]func(ProgressSnapshot){}}
}

// Subscribe registers fn to be called on every change. fn must not call
// Subscribe or the returned cancel function itself.
func (p *Progress) Subscribe(fn func(ProgressSnapshot)) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.next
	p.next++
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.snap
}

func (p *Progress) Completed() int { return p.Snapshot().Completed }

func (p *Progress) Total() int { return p.Snapshot().Total }

func (p *Progress) Ratio() float64 { return p.Snapshot().Ratio() }

func (p *Progress) reset(total int) {
	p.update(func(s *ProgressSnapshot) {
		s.Completed = 0
		s.Total = total
	})
}

func (p *Progress) increment() {
	p.update(func(s *ProgressSnapshot) {
		s.Completed++
	})
}

func (p *Progress) update(fn func(s *ProgressSnapshot)) {
	p.notify.Lock()
	defer p.notify.Unlock()

	p.mu.Lock()
	before := p.snap
	fn(&p.snap)
	after := p.snap
	subs := make([]func(ProgressSnapshot), 0, len(p.subs))
	for _, sub := range p.subs {
		subs = append(subs, sub)
	}
	p.mu.Unlock()

	if before == after {
		return
	}
	for _, sub := range subs {
		sub(after)
	}
}
