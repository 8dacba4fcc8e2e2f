package model

// Grade is a letter grade as produced by the label decoder. The service does
// not restrict the value space; the constants below are the known labels.
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

type Impact string

const (
	ImpactStrongPositive Impact = "strong_positive"
	ImpactPositive       Impact = "positive"
	ImpactNeutral        Impact = "neutral"
	ImpactNegative       Impact = "negative"
	ImpactStrongNegative Impact = "strong_negative"
)

type PredictionResult struct {
	PredictedGrade  Grade             `json:"predicted_grade"`
	Confidence      float64           `json:"confidence"`
	RiskLevel       RiskLevel         `json:"risk_level"`
	RiskScore       int               `json:"risk_score"`
	Recommendations []string          `json:"recommendations"`
	FeatureImpacts  map[string]Impact `json:"feature_impacts"`
}
