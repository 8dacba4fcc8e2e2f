package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"elevatr.app/predictor/internal/classifier"
	"elevatr.app/predictor/internal/model"
	"elevatr.app/predictor/internal/service"
)

func atRiskRecord() model.StudentRecord {
	return model.StudentRecord{
		Age:                  20,
		Gender:               model.GenderMale,
		StudyHoursWeekly:     5,
		AttendancePercent:    40,
		PreviousGPA:          5.5,
		AssignmentsCompleted: 30,
		ParticipationScore:   20,
		MidtermScore:         30,
		HoursOnPlatform:      10,
	}
}

func studentJSON(age int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"age": %d, "gender": "F", "study_hours_weekly": 30, "attendance_percent": 95,
		"previous_gpa": 9.0, "assignments_completed": 95, "participation_score": 90,
		"midterm_score": 92, "hours_on_platform": 120
	}`, age))
}

var _ = Describe("PredictionService", func() {
	var (
		ctx  context.Context
		clf  *mockClassifier
		pc   *mockCache
		svc  service.PredictionService
		opts service.BatchOptions
	)

	BeforeEach(func() {
		ctx = context.Background()
		clf = &mockClassifier{version: "v1"}
		pc = &mockCache{}
		opts = service.BatchOptions{MaxSize: 100, Concurrency: 4}
	})

	JustBeforeEach(func() {
		svc = service.NewPredictionService(clf, pc, opts)
	})

	Describe("Predict", func() {
		It("composes grade, confidence, risk, impacts and recommendations", func() {
			clf.predictFn = func(_ context.Context, v model.FeatureVector) (classifier.Output, error) {
				Expect(v[8]).To(Equal(1.0))
				return classifier.Output{
					Grade:         model.GradeF,
					Probabilities: map[model.Grade]float64{model.GradeF: 0.876, model.GradeD: 0.124},
				}, nil
			}

			result, err := svc.Predict(ctx, atRiskRecord())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.PredictedGrade).To(Equal(model.GradeF))
			Expect(result.Confidence).To(Equal(0.88))
			Expect(result.RiskLevel).To(Equal(model.RiskLevelHigh))
			Expect(result.RiskScore).To(Equal(100))
			Expect(result.Recommendations).NotTo(BeEmpty())
			Expect(len(result.Recommendations)).To(BeNumerically("<=", 5))
			Expect(result.FeatureImpacts).To(HaveKeyWithValue(model.FeatureAttendancePercent, model.ImpactStrongNegative))
		})

		It("defaults confidence when the classifier has no probabilities", func() {
			clf.predictFn = func(context.Context, model.FeatureVector) (classifier.Output, error) {
				return classifier.Output{Grade: model.GradeA}, nil
			}

			result, err := svc.Predict(ctx, atRiskRecord())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Confidence).To(Equal(service.DefaultConfidence))
			Expect(result.RiskLevel).To(Equal(model.RiskLevelLow))
		})

		It("wraps classifier failures without retrying", func() {
			clf.predictFn = func(context.Context, model.FeatureVector) (classifier.Output, error) {
				return classifier.Output{}, fmt.Errorf("%w: bad shape", classifier.ErrInference)
			}

			_, err := svc.Predict(ctx, atRiskRecord())
			Expect(err).To(MatchError(service.ErrPredictionFailed))
			Expect(errors.Is(err, classifier.ErrInference)).To(BeTrue())
			Expect(err.Error()).To(Equal("Prediction failed: inference failed: bad shape"))
			Expect(clf.calls()).To(Equal(1))
		})

		It("serves repeated records from the cache", func() {
			first, err := svc.Predict(ctx, atRiskRecord())
			Expect(err).NotTo(HaveOccurred())

			second, err := svc.Predict(ctx, atRiskRecord())
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
			Expect(clf.calls()).To(Equal(1))
		})

		It("bypasses the cache when the model version is unknown", func() {
			clf.unversioned = true
			grade := model.GradeA
			clf.predictFn = func(context.Context, model.FeatureVector) (classifier.Output, error) {
				return classifier.Output{Grade: grade}, nil
			}

			first, err := svc.Predict(ctx, atRiskRecord())
			Expect(err).NotTo(HaveOccurred())
			Expect(first.PredictedGrade).To(Equal(model.GradeA))

			grade = model.GradeF
			second, err := svc.Predict(ctx, atRiskRecord())
			Expect(err).NotTo(HaveOccurred())
			Expect(second.PredictedGrade).To(Equal(model.GradeF))
			Expect(clf.calls()).To(Equal(2))
			Expect(pc.entries).To(BeEmpty())
		})

		It("keys cached results by model version", func() {
			_, err := svc.Predict(ctx, atRiskRecord())
			Expect(err).NotTo(HaveOccurred())

			clf.version = "next"
			_, err = svc.Predict(ctx, atRiskRecord())
			Expect(err).NotTo(HaveOccurred())
			Expect(clf.calls()).To(Equal(2))
			Expect(pc.entries).To(HaveLen(2))
		})

		It("keeps predicting when the cache is down", func() {
			pc.getFn = func(context.Context, string) (*model.PredictionResult, error) {
				return nil, errors.New("connection refused")
			}
			pc.setFn = func(context.Context, string, *model.PredictionResult) error {
				return errors.New("connection refused")
			}

			result, err := svc.Predict(ctx, atRiskRecord())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.PredictedGrade).To(Equal(model.GradeB))
		})
	})

	Describe("Batch", func() {
		It("isolates an invalid record to its own slot", func() {
			items := []json.RawMessage{studentJSON(20), studentJSON(30), studentJSON(22)}

			results, err := svc.Batch(ctx, items)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].Result).NotTo(BeNil())
			Expect(results[1].Result).To(BeNil())
			Expect(results[1].Error).To(Equal("Student 1: Age must be between 18-25"))
			Expect(results[2].Result).NotTo(BeNil())
		})

		It("preserves input order under concurrency", func() {
			clf.predictFn = func(_ context.Context, v model.FeatureVector) (classifier.Output, error) {
				grades := map[float64]model.Grade{18: model.GradeF, 19: model.GradeD, 20: model.GradeC, 21: model.GradeB, 22: model.GradeA, 23: model.GradeS}
				return classifier.Output{Grade: grades[v[0]]}, nil
			}
			var items []json.RawMessage
			for age := 18; age <= 23; age++ {
				items = append(items, studentJSON(age))
			}

			results, err := svc.Batch(ctx, items)
			Expect(err).NotTo(HaveOccurred())
			want := []model.Grade{model.GradeF, model.GradeD, model.GradeC, model.GradeB, model.GradeA, model.GradeS}
			for i, r := range results {
				Expect(r.Result).NotTo(BeNil())
				Expect(r.Result.PredictedGrade).To(Equal(want[i]))
			}
		})

		It("reports per-item classifier failures", func() {
			clf.predictFn = func(_ context.Context, v model.FeatureVector) (classifier.Output, error) {
				if v[0] == 21 {
					return classifier.Output{}, classifier.ErrInference
				}
				return classifier.Output{Grade: model.GradeA}, nil
			}

			results, err := svc.Batch(ctx, []json.RawMessage{studentJSON(21), studentJSON(22)})
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Error).To(Equal("Student 0: Prediction failed: inference failed"))
			Expect(results[1].Result.PredictedGrade).To(Equal(model.GradeA))
		})

		It("reports non-object entries per slot", func() {
			results, err := svc.Batch(ctx, []json.RawMessage{json.RawMessage(`"x"`), json.RawMessage(`{}`)})
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Error).To(Equal("Student 0: Expected a JSON object of student data"))
			Expect(results[1].Error).To(Equal("Student 1: Missing required field: age"))
		})

		It("accepts an empty batch", func() {
			results, err := svc.Batch(ctx, []json.RawMessage{})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("accepts exactly the maximum", func() {
			items := make([]json.RawMessage, 100)
			for i := range items {
				items[i] = studentJSON(20)
			}
			results, err := svc.Batch(ctx, items)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(100))
		})

		It("rejects oversized batches wholesale", func() {
			items := make([]json.RawMessage, 101)
			for i := range items {
				items[i] = studentJSON(20)
			}

			_, err := svc.Batch(ctx, items)
			Expect(err).To(MatchError(service.ErrBatchTooLarge))
			Expect(err.Error()).To(Equal("Batch size limited to 100 students"))
			Expect(clf.calls()).To(BeZero())
		})

		It("fails when the request context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := svc.Batch(cctx, []json.RawMessage{studentJSON(20)})
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("Ready", func() {
		It("delegates to the classifier", func() {
			clf.readyFn = func(context.Context) error { return classifier.ErrModelUnavailable }
			Expect(svc.Ready(ctx)).To(MatchError(classifier.ErrModelUnavailable))
			Expect(svc.ModelVersion()).To(Equal("v1"))
		})
	})
})

var _ = DescribeTable("Confidence",
	func(out classifier.Output, want float64) {
		Expect(service.Confidence(out)).To(Equal(want))
	},
	Entry("no distribution", classifier.Output{Grade: model.GradeA}, 0.85),
	Entry("rounds to two decimals", classifier.Output{Grade: model.GradeA, Probabilities: map[model.Grade]float64{model.GradeA: 0.6049}}, 0.60),
	Entry("rounds half up", classifier.Output{Grade: model.GradeB, Probabilities: map[model.Grade]float64{model.GradeB: 0.915}}, 0.92),
	Entry("grade missing from distribution", classifier.Output{Grade: model.GradeC, Probabilities: map[model.Grade]float64{model.GradeA: 1}}, 0.85),
)
