package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/encuestapp/sist-evaluacion/model"
	"github.com/encuestapp/sist-evaluacion/results"
)

func sampleSurvey() model.Survey {
	return model.Survey{
		ID:          1,
		Title:       "Clima laboral",
		Description: "Encuesta de satisfacción",
		CreatedAt:   "2024-05-01 10:00",
		OwnerID:     1,
	}
}

func sampleData(questions int) []results.QuestionResult {
	data := make([]results.QuestionResult, questions)
	for i := range data {
		data[i] = results.QuestionResult{
			QuestionID:  i + 1,
			Question:    "¿Está satisfecho con el área de trabajo?",
			Percentages: results.Percentages([]string{"si", "si", "no", "tal vez"}),
		}
	}
	return data
}

func TestRenderProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleSurvey(), sampleData(3))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !strings.HasPrefix(buf.String(), "%PDF-") {
		t.Errorf("output does not start with a PDF header")
	}
	if buf.Len() < 500 {
		t.Errorf("suspiciously small document: %d bytes", buf.Len())
	}
}

func TestRenderEmptySurvey(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleSurvey(), nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF-") {
		t.Errorf("output does not start with a PDF header")
	}
}

func TestBuildPaginates(t *testing.T) {
	if got := build(sampleSurvey(), sampleData(3)).PageCount(); got != 1 {
		t.Errorf("3 questions: expected 1 page, got %d", got)
	}

	// a Letter page fits around 16 question blocks below the header
	if got := build(sampleSurvey(), sampleData(60)).PageCount(); got < 2 {
		t.Errorf("60 questions: expected a page break, got %d page(s)", got)
	}
}
