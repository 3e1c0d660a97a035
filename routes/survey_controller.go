package routes

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/encuestapp/sist-evaluacion/app"
	"github.com/encuestapp/sist-evaluacion/httpx"
	"github.com/encuestapp/sist-evaluacion/log"
	"github.com/encuestapp/sist-evaluacion/model"
	"github.com/encuestapp/sist-evaluacion/routes/middlewares"
)

type surveyRow struct {
	model.Survey
	OwnerName string
	CanDelete bool
}

type indexPage struct {
	page
	Name    string
	Surveys []surveyRow
}

func Index(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middlewares.UserID(r)

		rows, err := app.QueryContext(r.Context(), `
			SELECT e.id, e.titulo, e.descripcion, e.fecha_creacion, e.id_usuario, COALESCE(u.nombre, '')
			FROM encuestas e
			LEFT OUTER JOIN usuarios u ON (e.id_usuario = u.id)
			ORDER BY e.id`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}
		defer rows.Close()

		surveys := []surveyRow{}
		for rows.Next() {
			s := surveyRow{}
			err = rows.Scan(&s.ID, &s.Title, &s.Description, &s.CreatedAt, &s.OwnerID, &s.OwnerName)
			if err != nil {
				httpx.LogInternalError(w, "db.get_surveys.scan", err)
				return
			}
			s.CanDelete = s.OwnerID == userID
			surveys = append(surveys, s)
		}

		renderHTML(w, "index.html", indexPage{
			page:    page{Flash: httpx.PopFlash(w, r)},
			Name:    middlewares.UserName(r),
			Surveys: surveys,
		})
	}
}

func CreateSurveyPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderHTML(w, "crear_encuesta.html", page{Flash: httpx.PopFlash(w, r)})
	}
}

// CreateSurvey persists a survey and its full ordered question list in one
// transaction. The numbered form fields are collected into an ordered list
// and validated against the declared count before anything is written.
func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "create_survey.parse_form")
			return
		}

		title, description, questions, err := parseSurveyForm(r.PostForm)
		if errors.Is(err, model.ErrMalformedSubmission) {
			log.Debug("create_survey.malformed:", err)
			httpx.SetFlash(w, "El formulario está incompleto. Revisa las preguntas.")
			http.Redirect(w, r, "/crear_encuesta", http.StatusSeeOther)
			return
		}

		userID, _ := middlewares.UserID(r)
		createdAt := time.Now().Format("2006-01-02 15:04")

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		var surveyID int
		err = tx.QueryRowContext(r.Context(), `
			INSERT INTO encuestas (titulo, descripcion, fecha_creacion, id_usuario)
			VALUES (?, ?, ?, ?)
			RETURNING id`,
			title, description, createdAt, userID,
		).Scan(&surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		stmt, err := tx.PrepareContext(r.Context(), `
			INSERT INTO preguntas (id_encuesta, texto_pregunta, tipo)
			VALUES (?, ?, ?)`)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey.questions.prepare", err)
			return
		}
		defer stmt.Close()

		for _, q := range questions {
			_, err = stmt.ExecContext(r.Context(), surveyID, q.Text, q.Type)
			if err != nil {
				httpx.LogInternalError(w, "db.insert_survey.questions.insert", err)
				return
			}
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey.commit", err)
			return
		}

		httpx.SetFlash(w, "Encuesta creada correctamente.")
		http.Redirect(w, r, "/index", http.StatusSeeOther)
	}
}

type fillPage struct {
	page
	Survey    model.Survey
	Questions []model.Question
}

func FillSurveyPage(app app.App) http.HandlerFunc {
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

		questions, err := questionsBySurvey(r.Context(), app.DB, surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_questions", err)
			return
		}

		renderHTML(w, "llenar_encuesta.html", fillPage{
			page:      page{Flash: httpx.PopFlash(w, r)},
			Survey:    survey,
			Questions: questions,
		})
	}
}

// FillSurvey records one answer row per question of the survey. A question
// the submitter skipped still gets a row, with the empty string in both
// respuesta_texto and valor. Answers are never validated against the
// question type, and resubmitting appends fresh rows.
func FillSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		_, err = surveyByID(r.Context(), app.DB, surveyID)
		switch {
		case errors.Is(err, model.ErrNotFound):
			httpx.SetFlash(w, "La encuesta no existe.")
			http.Redirect(w, r, "/index", http.StatusSeeOther)
			return
		case err != nil:
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		questions, err := questionsBySurvey(r.Context(), app.DB, surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_questions", err)
			return
		}

		err = r.ParseForm()
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "fill_survey.parse_form")
			return
		}

		userID, _ := middlewares.UserID(r)

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(r.Context(), `
			INSERT INTO respuestas (id_pregunta, id_usuario, respuesta_texto, valor)
			VALUES (?, ?, ?, ?)`)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_answers.prepare", err)
			return
		}
		defer stmt.Close()

		for _, q := range questions {
			answer := r.PostForm.Get("respuesta_" + strconv.Itoa(q.ID))
			_, err = stmt.ExecContext(r.Context(), q.ID, userID, answer, answer)
			if err != nil {
				httpx.LogInternalError(w, "db.insert_answers.insert", err)
				return
			}
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_answers.commit", err)
			return
		}

		httpx.SetFlash(w, "Encuesta completada exitosamente.")
		http.Redirect(w, r, "/index", http.StatusSeeOther)
	}
}

// DeleteSurvey removes a survey and its questions and answers. Only the
// creator may delete.
func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		userID, _ := middlewares.UserID(r)

		err = deleteSurvey(r.Context(), app.DB, surveyID, userID)
		switch {
		case errors.Is(err, model.ErrNotFound):
			httpx.SetFlash(w, "La encuesta no existe.")
		case errors.Is(err, model.ErrNotOwner):
			log.Debugf("delete_survey.not_owner: survey %d, user %d", surveyID, userID)
			httpx.SetFlash(w, "No puedes eliminar esta encuesta porque no la creaste.")
		case err != nil:
			httpx.LogInternalError(w, "db.delete_survey", err)
			return
		default:
			httpx.SetFlash(w, "Encuesta eliminada exitosamente.")
		}
		http.Redirect(w, r, "/index", http.StatusSeeOther)
	}
}

type questionInput struct {
	Text string
	Type string
}

// parseSurveyForm turns the numbered pregunta_N/tipo_N fan-out into an
// ordered list, checked in full against the declared cantidad. All missing
// fields are reported together.
func parseSurveyForm(form url.Values) (title, description string, questions []questionInput, err error) {
	var missing *multierror.Error

	title = form.Get("titulo")
	if title == "" {
		missing = multierror.Append(missing, errors.New("titulo"))
	}
	description = form.Get("descripcion")
	if description == "" {
		missing = multierror.Append(missing, errors.New("descripcion"))
	}

	count, err := strconv.Atoi(form.Get("cantidad"))
	if err != nil || count < 1 {
		missing = multierror.Append(missing, errors.New("cantidad"))
		return title, description, nil, errors.Wrap(model.ErrMalformedSubmission, missing.Error())
	}

	for i := 1; i <= count; i++ {
		q := questionInput{
			Text: form.Get(fmt.Sprintf("pregunta_%d", i)),
			Type: form.Get(fmt.Sprintf("tipo_%d", i)),
		}
		if q.Text == "" {
			missing = multierror.Append(missing, errors.Errorf("pregunta_%d", i))
		}
		if q.Type == "" {
			missing = multierror.Append(missing, errors.Errorf("tipo_%d", i))
		}
		questions = append(questions, q)
	}

	if err := missing.ErrorOrNil(); err != nil {
		return title, description, nil, errors.Wrap(model.ErrMalformedSubmission, err.Error())
	}
	return title, description, questions, nil
}

func surveyByID(ctx context.Context, db *sql.DB, surveyID int) (survey model.Survey, err error) {
	err = db.QueryRowContext(ctx, `
		SELECT id, titulo, descripcion, fecha_creacion, id_usuario
		FROM encuestas
		WHERE id = ?`,
		surveyID,
	).Scan(&survey.ID, &survey.Title, &survey.Description, &survey.CreatedAt, &survey.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return survey, model.ErrNotFound
	}
	return survey, errors.Wrap(err, "select survey")
}

func questionsBySurvey(ctx context.Context, db *sql.DB, surveyID int) ([]model.Question, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, id_encuesta, texto_pregunta, tipo
		FROM preguntas
		WHERE id_encuesta = ?
		ORDER BY id`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select questions")
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q := model.Question{}
		err = rows.Scan(&q.ID, &q.SurveyID, &q.Text, &q.Type)
		if err != nil {
			return nil, errors.Wrap(err, "scan question")
		}
		questions = append(questions, q)
	}
	return questions, errors.Wrap(rows.Err(), "iterate questions")
}

func deleteSurvey(ctx context.Context, db *sql.DB, surveyID, requesterID int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	var ownerID int
	err = tx.QueryRowContext(ctx, `
		SELECT id_usuario FROM encuestas WHERE id = ?`,
		surveyID,
	).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "select owner")
	}
	if ownerID != requesterID {
		return model.ErrNotOwner
	}

	// children first: foreign keys are enforced
	_, err = tx.ExecContext(ctx, `
		DELETE FROM respuestas
		WHERE id_pregunta IN (SELECT id FROM preguntas WHERE id_encuesta = ?)`,
		surveyID,
	)
	if err != nil {
		return errors.Wrap(err, "delete answers")
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM preguntas WHERE id_encuesta = ?`,
		surveyID,
	)
	if err != nil {
		return errors.Wrap(err, "delete questions")
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM encuestas WHERE id = ?`,
		surveyID,
	)
	if err != nil {
		return errors.Wrap(err, "delete survey")
	}

	return errors.Wrap(tx.Commit(), "commit")
}
