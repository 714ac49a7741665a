package engine

import "sync"

// Admission bounds the number of workers running at once. Admit blocks
// while the limit is reached; Release frees a slot and wakes one waiter.
// Waiters are not served in arrival order.
type Admission struct {
	mu      sync.Mutex
	cond    *sync.Cond
	active  int
	waiting int
	max     int
}

// NewAdmission creates an Admission allowing limit concurrent workers.
// Values below 1 are raised to 1.
func NewAdmission(limit int) *Admission {
	if limit < 1 {
		limit = 1
	}
	a := &Admission{max: limit}
	a.cond = sync.NewCond(&a.mu)
	return a
}

// Admit takes a slot, waiting as long as necessary for one to free up.
// Every successful Admit must be paired with exactly one Release.
func (a *Admission) Admit() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for a.active >= a.max {
		a.waiting++
		a.cond.Wait()
		a.waiting--
	}
	a.active++
}

// Release returns a slot taken by Admit.
func (a *Admission) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active == 0 {
		panic("engine: Release without matching Admit")
	}
	a.active--
	a.cond.Signal()
}

// Active returns the number of admitted workers.
func (a *Admission) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Waiting returns the number of callers blocked in Admit.
func (a *Admission) Waiting() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.waiting
}

// Max returns the configured worker limit.
func (a *Admission) Max() int {
	return a.max
}
