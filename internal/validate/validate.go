// Package validate gatekeeps raw prediction payloads. Checks run in a fixed
// order and only the first failure is reported.
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"elevatr.app/predictor/internal/model"
)

// Error is a client-facing validation failure.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrNoData    = &Error{Message: "No data provided"}
	ErrNotObject = &Error{Message: "Expected a JSON object of student data"}
)

// RequiredFields is the order in which presence is checked.
var RequiredFields = []string{
	model.FeatureAge,
	model.FeatureGender,
	model.FeatureStudyHoursWeekly,
	model.FeatureAttendancePercent,
	model.FeaturePreviousGPA,
	model.FeatureAssignmentsCompleted,
	model.FeatureParticipationScore,
	model.FeatureMidtermScore,
	model.FeatureHoursOnPlatform,
}

// Bound is the inclusive valid range of a numeric field.
type Bound struct {
	Field   string
	Min     float64
	Max     float64
	Message string
}

// Bounds is the order in which numeric ranges are checked.
var Bounds = []Bound{
	{model.FeatureAge, 18, 25, "Age must be between 18-25"},
	{model.FeatureStudyHoursWeekly, 5, 40, "Study hours must be between 5-40"},
	{model.FeatureAttendancePercent, 0, 100, "Attendance must be between 0-100"},
	{model.FeaturePreviousGPA, 5.0, 10.0, "Previous GPA must be between 5.0-10.0"},
	{model.FeatureAssignmentsCompleted, 0, 100, "Assignments completed must be between 0-100"},
	{model.FeatureParticipationScore, 0, 100, "Participation score must be between 0-100"},
	{model.FeatureMidtermScore, 0, 100, "Midterm score must be between 0-100"},
	{model.FeatureHoursOnPlatform, 10, 200, "Hours on platform must be between 10-200"},
}

// Decode parses a single JSON payload and validates it. An empty body or any
// empty JSON value (null, false, 0, "", [] or {}) is reported as ErrNoData.
func Decode(raw []byte) (model.StudentRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || isEmptyValue(trimmed) {
		return model.StudentRecord{}, ErrNoData
	}
	fields, err := decodeObject(trimmed)
	if err != nil {
		return model.StudentRecord{}, err
	}
	return Fields(fields)
}

func isEmptyValue(raw []byte) bool {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

// DecodeItem parses one entry of a batch. Unlike Decode, an empty object is
// reported as a missing field.
func DecodeItem(raw []byte) (model.StudentRecord, error) {
	fields, err := decodeObject(bytes.TrimSpace(raw))
	if err != nil {
		return model.StudentRecord{}, err
	}
	return Fields(fields)
}

func decodeObject(raw []byte) (map[string]any, error) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, ErrNotObject
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, &Error{Message: fmt.Sprintf("Invalid JSON: %v", err)}
	}
	return fields, nil
}

// Fields validates an already decoded payload and builds the record.
func Fields(fields map[string]any) (model.StudentRecord, error) {
	for _, name := range RequiredFields {
		if _, ok := fields[name]; !ok {
			return model.StudentRecord{}, &Error{Field: name, Message: "Missing required field: " + name}
		}
	}

	values := make(map[string]float64, len(Bounds))
	for _, b := range Bounds {
		v, ok := number(fields[b.Field])
		if !ok {
			return model.StudentRecord{}, &Error{Field: b.Field, Message: b.Field + " must be a valid number"}
		}
		if !(b.Min <= v && v <= b.Max) {
			return model.StudentRecord{}, &Error{Field: b.Field, Message: b.Message}
		}
		values[b.Field] = v
	}

	gender, _ := fields[model.FeatureGender].(string)
	if gender != string(model.GenderMale) && gender != string(model.GenderFemale) {
		return model.StudentRecord{}, &Error{Field: model.FeatureGender, Message: "Gender must be 'M' or 'F'"}
	}

	return model.StudentRecord{
		Age:                  values[model.FeatureAge],
		Gender:               model.Gender(gender),
		StudyHoursWeekly:     values[model.FeatureStudyHoursWeekly],
		AttendancePercent:    values[model.FeatureAttendancePercent],
		PreviousGPA:          values[model.FeaturePreviousGPA],
		AssignmentsCompleted: values[model.FeatureAssignmentsCompleted],
		ParticipationScore:   values[model.FeatureParticipationScore],
		MidtermScore:         values[model.FeatureMidtermScore],
		HoursOnPlatform:      values[model.FeatureHoursOnPlatform],
	}, nil
}

// number accepts JSON numbers and numeric strings.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
