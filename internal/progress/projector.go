package progress

import "github.com/specialistvlad/forgegrid/internal/node"

// OverallPercent projects the progress of step stepIndex (zero based) out of
// stepCount, itself stepPercent complete, onto the whole pipeline. The result
// is clamped to [0, 100]. A non-positive stepCount yields 0.
func OverallPercent(stepIndex, stepCount int, stepPercent float64) float64 {
	if stepCount <= 0 {
		return 0
	}
	raw := (float64(stepIndex) + stepPercent/100) / float64(stepCount) * 100
	return clamp(raw, 0, 100)
}

// RemainingSeconds is the time left in the current task plus the estimates of
// every step still to come.
func RemainingSeconds(currentRemaining int64, future []int64) int64 {
	total := currentRemaining
	for _, s := range future {
		total += s
	}
	return total
}

// DefaultEstimateSeconds is the static duration estimate for a node type,
// used until the task runner reports its own estimate for the step.
func DefaultEstimateSeconds(t node.Type) int64 {
	switch t {
	case node.Ingest:
		return 60
	case node.Filter:
		return 30
	case node.Train:
		return 240
	case node.Export:
		return 60
	case node.Chat:
		return 20
	default:
		return 30
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
