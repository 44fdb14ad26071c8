// Package workpool bounds concurrent access to the blocking
// descriptor/version-range fetches the collector issues while expanding a
// node's children (spec §5: "an internal worker pool ... that issues
// descriptor/version-range requests in parallel"). It deliberately does not
// bound recursion itself: the collector recurses through many stack frames
// as it descends a dependency tree, and gating each recursive call on the
// same fixed-size semaphore that an ancestor call is still holding would
// exhaust the semaphore on any chain deeper than the pool's size. Only the
// leaf-level blocking calls acquire a slot, and they release it before
// returning, so nothing is ever held across a recursive call.
package workpool

// Pool bounds concurrent execution of blocking work to a fixed size.
type Pool struct {
	sem chan struct{}
}

// New builds a Pool allowing up to size concurrent Do calls. size <= 0 means
// unbounded.
func New(size int) *Pool {
	if size <= 0 {
		return &Pool{}
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Do runs job synchronously in the calling goroutine, blocking until a slot
// is free. The slot is held only for the duration of job itself -- callers
// must not recurse back into Do (directly or transitively) from within job,
// or they risk the same exhaustion this design avoids.
func (p *Pool) Do(job func()) {
	if p.sem == nil {
		job()
		return
	}
	p.sem <- struct{}{}
	defer func() { <-p.sem }()
	job()
}
