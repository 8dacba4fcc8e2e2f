// Package features turns a validated StudentRecord into the numeric vector the
// classifier was trained on.
package features

import "elevatr.app/predictor/internal/model"

// Encode builds the classifier input in model.FeatureNames order. Gender F maps
// to 0, any other value to 1.
func Encode(r model.StudentRecord) model.FeatureVector {
	return model.FeatureVector{
		r.Age,
		r.StudyHoursWeekly,
		r.AttendancePercent,
		r.PreviousGPA,
		r.AssignmentsCompleted,
		r.ParticipationScore,
		r.MidtermScore,
		r.HoursOnPlatform,
		EncodeGender(r.Gender),
	}
}

func EncodeGender(g model.Gender) float64 {
	if g == model.GenderFemale {
		return 0
	}
	return 1
}
