package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/encuestapp/sist-evaluacion/app"
	"github.com/encuestapp/sist-evaluacion/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})

	root.Get("/login", LoginPage(app))
	root.Post("/login", Login(app))
	root.Get("/usuario", RegisterPage(app))
	root.Post("/usuario", Register(app))
	root.Get("/logout", Logout(app))

	// results are public
	root.Get(`/resultados/{id:^\d+$}`, Results(app))
	root.Get(`/exportar_pdf/{id:^\d+$}`, ExportPDF(app))

	root.Group(func(r chi.Router) {
		r.Use(middlewares.Session(app.Session))

		r.Get("/index", Index(app))
		r.Get("/crear_encuesta", CreateSurveyPage(app))
		r.Post("/crear_encuesta", CreateSurvey(app))
		r.Get(`/llenar_encuesta/{id:^\d+$}`, FillSurveyPage(app))
		r.Post(`/llenar_encuesta/{id:^\d+$}`, FillSurvey(app))
		r.Get(`/eliminar_encuesta/{id:^\d+$}`, DeleteSurvey(app))
	})

	return root
}
