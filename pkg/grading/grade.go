package grading

import "github.com/jwebster45206/hotspot-trainer/pkg/state"

// Grade is the letter grade derived from a score.
type Grade struct {
	Grade string `json:"grade"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var gradeBands = []struct {
	min   float64
	grade Grade
}{
	{0.90, Grade{Grade: "A", Label: "Excellent", Color: "#22c55e"}},
	{0.75, Grade{Grade: "B", Label: "Good", Color: "#84cc16"}},
	{0.60, Grade{Grade: "C", Label: "Fair", Color: "#eab308"}},
	{0.40, Grade{Grade: "D", Label: "Poor", Color: "#f97316"}},
}

var gradeF = Grade{Grade: "F", Label: "Failing", Color: "#ef4444"}

// SafetyRatio is safety / max(1, safety+risk).
func SafetyRatio(score state.Score) float64 {
	total := max(1, score.SafetyPoints+score.RiskPoints)
	return float64(score.SafetyPoints) / float64(total)
}

// CalculateGrade maps a score to its letter grade.
func CalculateGrade(score state.Score) Grade {
	ratio := SafetyRatio(score)
	for _, band := range gradeBands {
		if ratio >= band.min {
			return band.grade
		}
	}
	return gradeF
}
