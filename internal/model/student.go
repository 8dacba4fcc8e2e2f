package model

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// StudentRecord is the validated input to a prediction. Values are used as-is;
// range checks happen in package validate before a record is built.
type StudentRecord struct {
	Age                  float64 `json:"age" jsonschema:"minimum=18,maximum=25,description=Student age in years"`
	Gender               Gender  `json:"gender" jsonschema:"enum=M,enum=F"`
	StudyHoursWeekly     float64 `json:"study_hours_weekly" jsonschema:"minimum=5,maximum=40"`
	AttendancePercent    float64 `json:"attendance_percent" jsonschema:"minimum=0,maximum=100"`
	PreviousGPA          float64 `json:"previous_gpa" jsonschema:"minimum=5,maximum=10"`
	AssignmentsCompleted float64 `json:"assignments_completed" jsonschema:"minimum=0,maximum=100"`
	ParticipationScore   float64 `json:"participation_score" jsonschema:"minimum=0,maximum=100"`
	MidtermScore         float64 `json:"midterm_score" jsonschema:"minimum=0,maximum=100"`
	HoursOnPlatform      float64 `json:"hours_on_platform" jsonschema:"minimum=10,maximum=200"`
}

// Feature names as they appear in JSON payloads and impact maps.
const (
	FeatureAge                  = "age"
	FeatureGender               = "gender"
	FeatureStudyHoursWeekly     = "study_hours_weekly"
	FeatureAttendancePercent    = "attendance_percent"
	FeaturePreviousGPA          = "previous_gpa"
	FeatureAssignmentsCompleted = "assignments_completed"
	FeatureParticipationScore   = "participation_score"
	FeatureMidtermScore         = "midterm_score"
	FeatureHoursOnPlatform      = "hours_on_platform"
	FeatureGenderEncoded        = "gender_encoded"
)

// FeatureVectorSize is the width of the classifier input.
const FeatureVectorSize = 9

// FeatureVector is the classifier input. The element order is fixed by the
// trained artifacts and must match FeatureNames.
type FeatureVector [FeatureVectorSize]float64

// FeatureNames lists FeatureVector positions in order.
var FeatureNames = [FeatureVectorSize]string{
	FeatureAge,
	FeatureStudyHoursWeekly,
	FeatureAttendancePercent,
	FeaturePreviousGPA,
	FeatureAssignmentsCompleted,
	FeatureParticipationScore,
	FeatureMidtermScore,
	FeatureHoursOnPlatform,
	FeatureGenderEncoded,
}

func (v FeatureVector) Slice() []float64 {
	out := make([]float64, len(v))
	copy(out, v[:])
	return out
}
