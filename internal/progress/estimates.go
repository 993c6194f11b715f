package progress

import "github.com/specialistvlad/forgegrid/internal/node"

// Estimates tracks the expected duration of every step of one run.
//
// Each step starts at its type's static default. Once the task runner returns
// a dynamic estimate on submission, the step's estimate becomes the larger of
// the two and stays that way for the rest of the run.
type Estimates struct {
	static  []int64
	current []int64
}

// NewEstimates seeds estimates for the given run order.
func NewEstimates(nodes []node.Node) *Estimates {
	e := &Estimates{
		static:  make([]int64, len(nodes)),
		current: make([]int64, len(nodes)),
	}
	for i, n := range nodes {
		e.static[i] = DefaultEstimateSeconds(n.Type)
		e.current[i] = e.static[i]
	}
	return e
}

// Observe folds the dynamic estimate for step i into the table.
func (e *Estimates) Observe(i int, dynamic int64) {
	if i < 0 || i >= len(e.current) {
		return
	}
	e.current[i] = max(e.static[i], dynamic)
}

// Step returns the current estimate for step i.
func (e *Estimates) Step(i int) int64 {
	if i < 0 || i >= len(e.current) {
		return 0
	}
	return e.current[i]
}

// After returns the estimates of every step following step i.
func (e *Estimates) After(i int) []int64 {
	if i+1 >= len(e.current) {
		return nil
	}
	return e.current[i+1:]
}

// Remaining is the pipeline-wide remaining time while step i has
// currentRemaining seconds left.
func (e *Estimates) Remaining(i int, currentRemaining int64) int64 {
	return RemainingSeconds(currentRemaining, e.After(i))
}

// Total sums the current estimates of all steps.
func (e *Estimates) Total() int64 {
	return RemainingSeconds(0, e.current)
}

// Len reports the number of steps.
func (e *Estimates) Len() int { return len(e.current) }
