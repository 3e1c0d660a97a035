package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/encuestapp/sist-evaluacion/app"
	"github.com/encuestapp/sist-evaluacion/httpx"
	"github.com/encuestapp/sist-evaluacion/log"
	"github.com/encuestapp/sist-evaluacion/model"
	"github.com/encuestapp/sist-evaluacion/report"
	"github.com/encuestapp/sist-evaluacion/results"
)

type resultsPage struct {
	page
	Survey     model.Survey
	Categories []string
	Data       []results.QuestionResult
}

func Results(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		survey, err := surveyByID(r.Context(), app.DB, surveyID)
		switch {
		case errors.Is(err, model.ErrNotFound):
			httpx.SetFlash(w, "La encuesta no existe.")
			http.Redirect(w, r, "/index", http.StatusSeeOther)
			return
		case err != nil:
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		data, err := results.ForSurvey(r.Context(), app.DB, surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_results", err)
			return
		}

		renderHTML(w, "resultados.html", resultsPage{
			page:       page{Flash: httpx.PopFlash(w, r)},
			Survey:     survey,
			Categories: results.Categories,
			Data:       data,
		})
	}
}

func ExportPDF(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		survey, err := surveyByID(r.Context(), app.DB, surveyID)
		switch {
		case errors.Is(err, model.ErrNotFound):
			httpx.SetFlash(w, "La encuesta no existe.")
			http.Redirect(w, r, "/index", http.StatusSeeOther)
			return
		case err != nil:
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		data, err := results.ForSurvey(r.Context(), app.DB, surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_results", err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="resultados.pdf"`)
		err = report.Render(w, survey, data)
		if err != nil {
			// headers are gone already; all that is left is logging
			log.Errorf("report.render: %s", err)
		}
	}
}
