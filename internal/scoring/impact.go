package scoring

import "elevatr.app/predictor/internal/model"

type impactFactor struct {
	feature string
	value   func(model.StudentRecord) float64
	labels  Ladder[model.Impact]
}

var impactFactors = []impactFactor{
	{
		feature: model.FeatureAttendancePercent,
		value:   func(r model.StudentRecord) float64 { return r.AttendancePercent },
		labels:  fiveLevel(90, 80, 70, 60),
	},
	{
		feature: model.FeatureStudyHoursWeekly,
		value:   func(r model.StudentRecord) float64 { return r.StudyHoursWeekly },
		labels:  fiveLevel(30, 20, 15, 10),
	},
	{
		feature: model.FeatureAssignmentsCompleted,
		value:   func(r model.StudentRecord) float64 { return r.AssignmentsCompleted },
		labels:  fiveLevel(90, 80, 70, 60),
	},
	{
		feature: model.FeatureMidtermScore,
		value:   func(r model.StudentRecord) float64 { return r.MidtermScore },
		labels:  fiveLevel(85, 70, 60, 50),
	},
	{
		feature: model.FeatureParticipationScore,
		value:   func(r model.StudentRecord) float64 { return r.ParticipationScore },
		labels: AtLeast(model.ImpactNegative,
			Rung[model.Impact]{80, model.ImpactPositive},
			Rung[model.Impact]{60, model.ImpactNeutral},
		),
	},
	{
		feature: model.FeaturePreviousGPA,
		value:   func(r model.StudentRecord) float64 { return r.PreviousGPA },
		labels: AtLeast(model.ImpactNegative,
			Rung[model.Impact]{8.5, model.ImpactStrongPositive},
			Rung[model.Impact]{7.5, model.ImpactPositive},
			Rung[model.Impact]{6.5, model.ImpactNeutral},
		),
	},
}

func fiveLevel(strongPositive, positive, neutral, negative float64) Ladder[model.Impact] {
	return AtLeast(model.ImpactStrongNegative,
		Rung[model.Impact]{strongPositive, model.ImpactStrongPositive},
		Rung[model.Impact]{positive, model.ImpactPositive},
		Rung[model.Impact]{neutral, model.ImpactNeutral},
		Rung[model.Impact]{negative, model.ImpactNegative},
	)
}

// TrackedFeatures lists the features Impacts labels, in evaluation order.
func TrackedFeatures() []string {
	out := make([]string, len(impactFactors))
	for i, f := range impactFactors {
		out[i] = f.feature
	}
	return out
}

// Impacts labels each tracked feature of r independently.
func Impacts(r model.StudentRecord) map[string]model.Impact {
	out := make(map[string]model.Impact, len(impactFactors))
	for _, f := range impactFactors {
		out[f.feature] = f.labels.Lookup(f.value(r))
	}
	return out
}
