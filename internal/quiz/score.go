package quiz

import "math"

// Tier buckets a final percentage into a feedback level.
type Tier int

const (
	TierNeedsReview Tier = iota
	TierGood
	TierVeryGood
	TierExcellent
)

var tierNames = map[Tier]string{
	TierNeedsReview: "needs_review",
	TierGood:        "good",
	TierVeryGood:    "very_good",
	TierExcellent:   "excellent",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "unknown"
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Percentage returns round(score/total*100). Halves round up.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(score)/float64(total)*100 + 0.5))
}

// TierFor maps a percentage onto its tier: 90, 75 and 60 are the lower
// bounds of excellent, very good and good.
func TierFor(percentage int) Tier {
	switch {
	case percentage >= 90:
		return TierExcellent
	case percentage >= 75:
		return TierVeryGood
	case percentage >= 60:
		return TierGood
	default:
		return TierNeedsReview
	}
}
