// Package report renders survey results as a PDF document.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/encuestapp/sist-evaluacion/model"
	"github.com/encuestapp/sist-evaluacion/results"
)

const (
	marginX    = 50.0
	topY       = 50.0
	breakLimit = 100.0 // minimum space left below a question block
)

// Render writes the results document for a survey to w.
func Render(w io.Writer, survey model.Survey, data []results.QuestionResult) error {
	return build(survey, data).Output(w)
}

func build(survey model.Survey, data []results.QuestionResult) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	// survey text is UTF-8; the core fonts want cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	_, pageH := pdf.GetPageSize()

	y := topY
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(marginX, y, tr("Título: "+survey.Title))
	y += 20
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(marginX, y, tr("Descripción: "+survey.Description))
	y += 20
	pdf.Text(marginX, y, tr("Fecha de creación: "+survey.CreatedAt))
	y += 30

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(marginX, y, tr("Respuestas en porcentajes:"))
	y += 20

	for _, q := range data {
		if y > pageH-breakLimit {
			pdf.AddPage()
			y = topY
		}

		pdf.SetFont("Helvetica", "B", 11)
		pdf.Text(marginX, y, tr("Pregunta: "+q.Question))
		y += 15

		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(marginX+10, y, tr(percentLine(q.Percentages)))
		y += 25
	}

	return pdf
}

func percentLine(pct map[string]float64) string {
	parts := make([]string, 0, len(results.Categories))
	for _, cat := range results.Categories {
		label := strings.ToUpper(cat[:1]) + cat[1:]
		parts = append(parts, fmt.Sprintf("%s: %v%%", label, pct[cat]))
	}
	return strings.Join(parts, " | ")
}
