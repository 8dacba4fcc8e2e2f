package scoring

import "elevatr.app/predictor/internal/model"

// MaxRiskScore is the upper clamp applied to the summed factor points.
const MaxRiskScore = 100

type riskFactor struct {
	feature string
	value   func(model.StudentRecord) float64
	points  Ladder[int]
}

// Each factor contributes at most one tier; the first bound the value falls
// under wins.
var riskFactors = []riskFactor{
	{
		feature: model.FeatureAttendancePercent,
		value:   func(r model.StudentRecord) float64 { return r.AttendancePercent },
		points:  Below(0, Rung[int]{50, 30}, Rung[int]{70, 20}, Rung[int]{80, 10}, Rung[int]{90, 5}),
	},
	{
		feature: model.FeatureStudyHoursWeekly,
		value:   func(r model.StudentRecord) float64 { return r.StudyHoursWeekly },
		points:  Below(0, Rung[int]{10, 25}, Rung[int]{15, 15}, Rung[int]{20, 8}),
	},
	{
		feature: model.FeatureAssignmentsCompleted,
		value:   func(r model.StudentRecord) float64 { return r.AssignmentsCompleted },
		points:  Below(0, Rung[int]{50, 25}, Rung[int]{70, 18}, Rung[int]{80, 10}, Rung[int]{90, 5}),
	},
	{
		feature: model.FeatureMidtermScore,
		value:   func(r model.StudentRecord) float64 { return r.MidtermScore },
		points:  Below(0, Rung[int]{40, 15}, Rung[int]{60, 10}, Rung[int]{70, 5}),
	},
	{
		feature: model.FeatureParticipationScore,
		value:   func(r model.StudentRecord) float64 { return r.ParticipationScore },
		points:  Below(0, Rung[int]{50, 5}, Rung[int]{70, 3}),
	},
	{
		feature: model.FeaturePreviousGPA,
		value:   func(r model.StudentRecord) float64 { return r.PreviousGPA },
		points:  Below(0, Rung[int]{6.0, 10}, Rung[int]{7.0, 5}),
	},
}

// RiskScore sums the per-factor points for r, clamped to [0, MaxRiskScore].
func RiskScore(r model.StudentRecord) int {
	score := 0
	for _, f := range riskFactors {
		score += f.points.Lookup(f.value(r))
	}
	return clamp(score, 0, MaxRiskScore)
}

// RiskBreakdown reports the points each factor contributed before clamping.
func RiskBreakdown(r model.StudentRecord) map[string]int {
	out := make(map[string]int, len(riskFactors))
	for _, f := range riskFactors {
		out[f.feature] = f.points.Lookup(f.value(r))
	}
	return out
}

// RiskLevelFor derives the risk level from the predicted grade, not the score.
func RiskLevelFor(g model.Grade) model.RiskLevel {
	switch g {
	case model.GradeD, model.GradeF:
		return model.RiskLevelHigh
	case model.GradeC:
		return model.RiskLevelMedium
	default:
		return model.RiskLevelLow
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
