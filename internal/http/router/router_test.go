package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"elevatr.app/predictor/internal/classifier"
	"elevatr.app/predictor/internal/http/router"
	"elevatr.app/predictor/internal/model"
	"elevatr.app/predictor/internal/service"
)

type stubClassifier struct{}

func (stubClassifier) Predict(_ context.Context, v model.FeatureVector) (classifier.Output, error) {
	grade := model.GradeA
	if v[2] < 70 {
		grade = model.GradeF
	}
	return classifier.Output{
		Grade:         grade,
		Probabilities: map[model.Grade]float64{grade: 0.7349},
	}, nil
}

func (stubClassifier) Ready(context.Context) error { return nil }

func (stubClassifier) Version() string { return "stub" }

func student(age int, attendance float64) map[string]any {
	return map[string]any{
		"age": age, "gender": "F", "study_hours_weekly": 30, "attendance_percent": attendance,
		"previous_gpa": 9.0, "assignments_completed": 95, "participation_score": 90,
		"midterm_score": 92, "hours_on_platform": 120,
	}
}

var _ = Describe("SetupRoutes", func() {
	var engine *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		engine = gin.New()
		svc := service.NewPredictionService(stubClassifier{}, nil, service.BatchOptions{MaxSize: 100, Concurrency: 4})
		router.SetupRoutes(engine, svc, router.RouterConfig{
			Version:        "1.0.0",
			Environment:    "test",
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   64 << 10,
		})
	})

	It("runs the full pipeline for /api/predict", func() {
		body, _ := json.Marshal(student(21, 95))
		req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp model.PredictionResult
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.PredictedGrade).To(Equal(model.GradeA))
		Expect(resp.Confidence).To(Equal(0.73))
		Expect(resp.RiskScore).To(Equal(0))
		Expect(resp.RiskLevel).To(Equal(model.RiskLevelLow))
	})

	It("isolates the invalid record in a batch", func() {
		body, _ := json.Marshal([]any{student(20, 95), student(30, 95), student(22, 60)})
		req := httptest.NewRequest(http.MethodPost, "/api/batch", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp []map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp).To(HaveLen(3))
		Expect(resp[0]["predicted_grade"]).To(Equal("A"))
		Expect(resp[1]).To(Equal(map[string]any{"error": "Student 1: Age must be between 18-25"}))
		Expect(resp[2]["predicted_grade"]).To(Equal("F"))
		Expect(resp[2]["risk_level"]).To(Equal("high"))
	})

	It("rejects 101 records", func() {
		items := make([]any, 101)
		for i := range items {
			items[i] = student(20, 95)
		}
		body, _ := json.Marshal(items)
		req := httptest.NewRequest(http.MethodPost, "/api/batch", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("Batch size limited to 100 students"))
	})

	It("refuses batch bodies past the size limit before decoding them", func() {
		items := make([]any, 1000)
		for i := range items {
			items[i] = student(20, 95)
		}
		body, _ := json.Marshal(items)
		Expect(len(body)).To(BeNumerically(">", 64<<10))
		req := httptest.NewRequest(http.MethodPost, "/api/batch", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
		Expect(w.Body.String()).To(ContainSubstring("Request body exceeds 65536 bytes"))
	})

	It("refuses oversized single predictions", func() {
		payload := student(21, 95)
		payload["notes"] = string(bytes.Repeat([]byte("x"), 70<<10))
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
	})

	DescribeTable("serves the read endpoints",
		func(path string, status int) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(status), fmt.Sprintf("GET %s", path))
		},
		Entry("index", "/", http.StatusOK),
		Entry("health", "/api/health", http.StatusOK),
		Entry("schema", "/api/schema", http.StatusOK),
		Entry("unknown", "/api/nope", http.StatusNotFound),
	)

	It("answers CORS preflight requests", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
		req.Header.Set("Origin", "https://dashboard.elevatr.io")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})
})
