// Package results computes per-question percentage breakdowns of survey
// answers over a fixed category taxonomy. It is the single aggregation
// implementation behind both the HTML results page and the PDF export.
package results

import (
	"context"
	"database/sql"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Categories are the recognized answer labels, in display order.
// Matching is exact after normalization: no synonyms, no partial matches.
var Categories = []string{"si", "no", "satisfecho", "insatisfecho", "acuerdo", "desacuerdo", "neutral"}

type QuestionResult struct {
	QuestionID  int                `json:"-"`
	Question    string             `json:"pregunta"`
	Percentages map[string]float64 `json:"porcentajes"`
}

// Normalize maps a raw answer onto its comparison form.
func Normalize(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// Percentages buckets raw answers into the category taxonomy.
// The denominator is the full answer count: unrecognized free text earns no
// category a numerator, but it still dilutes every recognized one.
// With no answers at all, every category reports 0.
func Percentages(rawAnswers []string) map[string]float64 {
	counts := make(map[string]int, len(rawAnswers))
	for _, a := range rawAnswers {
		counts[Normalize(a)]++
	}
	return fromCounts(counts)
}

func fromCounts(counts map[string]int) map[string]float64 {
	pct := make(map[string]float64, len(Categories))
	for _, cat := range Categories {
		pct[cat] = 0
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return pct
	}

	for _, cat := range Categories {
		if n := counts[cat]; n > 0 {
			pct[cat] = round2(float64(n) / float64(total) * 100)
		}
	}
	return pct
}

// round2 rounds to two decimals, half to even.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// ForSurvey aggregates every question of a survey, in creation order.
// The grouped counts come from a single query, so the result reflects one
// snapshot of the respuestas table; submissions committed mid-read are simply
// not counted.
func ForSurvey(ctx context.Context, db *sql.DB, surveyID int) ([]QuestionResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT p.id, p.texto_pregunta, r.respuesta_texto, COUNT(r.id)
		FROM preguntas p
		LEFT OUTER JOIN respuestas r ON (p.id = r.id_pregunta)
		WHERE p.id_encuesta = ?
		GROUP BY p.id, r.respuesta_texto
		ORDER BY p.id`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query answer counts")
	}
	defer rows.Close()

	var out []QuestionResult
	counts := map[string]int{}
	flush := func() {
		if len(out) > 0 {
			out[len(out)-1].Percentages = fromCounts(counts)
			counts = map[string]int{}
		}
	}

	for rows.Next() {
		var questionID int
		var question string
		var answer sql.NullString
		var count int
		err = rows.Scan(&questionID, &question, &answer, &count)
		if err != nil {
			return nil, errors.Wrap(err, "scan answer counts")
		}

		if len(out) == 0 || out[len(out)-1].QuestionID != questionID {
			flush()
			out = append(out, QuestionResult{QuestionID: questionID, Question: question})
		}
		if answer.Valid {
			// groups arrive keyed by raw text; variants of the same
			// category ("Si", "si ") merge here
			counts[Normalize(answer.String)] += count
		}
	}
	flush()

	return out, errors.Wrap(rows.Err(), "iterate answer counts")
}
