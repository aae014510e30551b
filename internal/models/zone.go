package models

// Zone classifies how much of the daily budget is in use.
type Zone string

const (
	ZoneGreen  Zone = "green"
	ZoneYellow Zone = "yellow"
	ZoneRed    Zone = "red"
)

// ZoneFor classifies current against goal. Green is current ≤ 80% of goal,
// yellow up to and including goal, red above. Ties go to the greener bucket.
func ZoneFor(current, goal float64) Zone {
	switch {
	case current*5 <= goal*4: // 0.8 × goal without the rounding of 0.8
		return ZoneGreen
	case current <= goal:
		return ZoneYellow
	default:
		return ZoneRed
	}
}
