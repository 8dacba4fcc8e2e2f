package scoring

import (
	"fmt"
	"strconv"

	"elevatr.app/predictor/internal/model"
)

const (
	// MaxRecommendations caps the advisory list; trailing entries are dropped.
	MaxRecommendations = 5

	// LowConfidenceThreshold is the confidence under which a caveat is added.
	LowConfidenceThreshold = 0.65
)

type advice struct {
	when func(model.StudentRecord) bool
	text func(model.StudentRecord) string
}

func always(model.StudentRecord) bool { return true }

func fixed(s string) func(model.StudentRecord) string {
	return func(model.StudentRecord) string { return s }
}

var failingAdvice = []advice{
	{
		when: func(r model.StudentRecord) bool { return r.AttendancePercent < 70 },
		text: func(r model.StudentRecord) string {
			return fmt.Sprintf("🚨 URGENT: Attendance is %.0f%%. Aim for 80%%+ immediately", r.AttendancePercent)
		},
	},
	{
		when: func(r model.StudentRecord) bool { return r.AssignmentsCompleted < 60 },
		text: func(r model.StudentRecord) string {
			return fmt.Sprintf("📝 CRITICAL: Complete missing assignments (currently %s%%)", plain(r.AssignmentsCompleted))
		},
	},
	{
		when: func(r model.StudentRecord) bool { return r.StudyHoursWeekly < 15 },
		text: func(r model.StudentRecord) string {
			return fmt.Sprintf("⏰ Increase study time from %.0f to 20+ hours/week", r.StudyHoursWeekly)
		},
	},
	{when: always, text: fixed("💬 Schedule meeting with academic advisor for support plan")},
}

var averageAdvice = []advice{
	{
		when: func(r model.StudentRecord) bool { return r.AttendancePercent < 80 },
		text: func(r model.StudentRecord) string {
			return fmt.Sprintf("📊 Boost attendance from %.0f%% to 85%%+ for better grades", r.AttendancePercent)
		},
	},
	{
		when: func(r model.StudentRecord) bool { return r.StudyHoursWeekly < 20 },
		text: func(r model.StudentRecord) string {
			return fmt.Sprintf("📚 Add %.0f more study hours weekly for improvement", 20-r.StudyHoursWeekly)
		},
	},
	{
		when: func(r model.StudentRecord) bool { return r.AssignmentsCompleted < 80 },
		text: func(r model.StudentRecord) string {
			return fmt.Sprintf("✅ Focus on assignment quality - currently at %s%%", plain(r.AssignmentsCompleted))
		},
	},
	{
		when: func(r model.StudentRecord) bool { return r.ParticipationScore < 60 },
		text: fixed("🗣️ Increase class participation to demonstrate engagement"),
	},
}

var goodAdvice = []advice{
	{
		when: func(r model.StudentRecord) bool { return r.StudyHoursWeekly < 25 && r.AttendancePercent >= 80 },
		text: func(r model.StudentRecord) string {
			return fmt.Sprintf("⭐ Add 3-5 study hours weekly to reach grade A (currently %.0fhrs)", r.StudyHoursWeekly)
		},
	},
	{
		when: func(r model.StudentRecord) bool { return r.AssignmentsCompleted < 90 },
		text: fixed("📈 Push assignment completion to 90%+ for top performance"),
	},
	{
		when: func(r model.StudentRecord) bool { return r.ParticipationScore < 75 },
		text: fixed("💡 Increase participation score to 80+ for stronger overall profile"),
	},
	{when: always, text: fixed("✓ Good foundation - small improvements can yield big results!")},
}

var excellentAdvice = []advice{
	{
		when: func(r model.StudentRecord) bool { return r.AttendancePercent >= 90 },
		text: fixed("🌟 Excellent attendance - keep up the consistency!"),
	},
	{
		when: func(r model.StudentRecord) bool { return r.StudyHoursWeekly >= 25 },
		text: fixed("💪 Strong study habits - you're setting a great example"),
	},
	{
		when: func(r model.StudentRecord) bool { return r.AssignmentsCompleted >= 90 },
		text: fixed("✓ Outstanding assignment completion rate"),
	},
	// Growth suggestion: mentoring first, top-performer praise otherwise.
	{
		when: func(r model.StudentRecord) bool { return r.ParticipationScore < 80 },
		text: fixed("📣 Consider mentoring peers to further develop leadership skills"),
	},
	{
		when: func(r model.StudentRecord) bool { return r.ParticipationScore >= 80 && r.MidtermScore >= 85 },
		text: fixed("🏆 Top performer - maintain this momentum!"),
	},
}

const (
	lowConfidenceNote = "⚠️ Prediction confidence is moderate - focus on consistent improvement"
	allGoodNote       = "✓ All metrics look good - keep up the great work!"
)

func adviceFor(g model.Grade) []advice {
	switch g {
	case model.GradeD, model.GradeF:
		return failingAdvice
	case model.GradeC:
		return averageAdvice
	case model.GradeB:
		return goodAdvice
	default:
		return excellentAdvice
	}
}

// Recommend selects advisory lines for r given the predicted grade and the
// classifier confidence. Order is most urgent first and the result never
// exceeds MaxRecommendations.
func Recommend(r model.StudentRecord, grade model.Grade, confidence float64) []string {
	out := make([]string, 0, MaxRecommendations+1)
	for _, a := range adviceFor(grade) {
		if a.when(r) {
			out = append(out, a.text(r))
		}
	}

	if confidence < LowConfidenceThreshold {
		out = append(out, lowConfidenceNote)
	}
	if len(out) == 0 {
		out = append(out, allGoodNote)
	}

	if len(out) > MaxRecommendations {
		out = out[:MaxRecommendations]
	}
	return out
}

// plain renders v without trailing zeros: 45 -> "45", 45.5 -> "45.5".
func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
