package routes

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/gofrs/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/encuestapp/sist-evaluacion/app"
	"github.com/encuestapp/sist-evaluacion/httpx"
	"github.com/encuestapp/sist-evaluacion/log"
	"github.com/encuestapp/sist-evaluacion/model"
)

// sessionCookie is the name jwtauth.TokenFromCookie looks up.
const sessionCookie = "jwt"

type credentialsForm struct {
	Name  string `form:"nombre"`
	Email string `form:"correo"`
}

func LoginPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderHTML(w, "login.html", page{Flash: httpx.PopFlash(w, r)})
	}
}

// Login looks a user up by the exact (nombre, correo) pair. There is no
// password: the pair is the whole credential.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form credentialsForm
		err := render.DecodeForm(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "login.parse_form")
			return
		}

		user, err := findUser(r.Context(), app.DB, strings.TrimSpace(form.Name), strings.TrimSpace(form.Email))
		switch {
		case errors.Is(err, model.ErrNotFound):
			log.Debug("login.user_not_found:", form.Email)
			httpx.SetFlash(w, "Usuario no encontrado. Cree una cuenta.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		case err != nil:
			httpx.LogInternalError(w, "db.get_user", err)
			return
		}

		err = openSession(w, app, user)
		if err != nil {
			httpx.LogInternalError(w, "login.token", err)
			return
		}

		httpx.SetFlash(w, "Bienvenido "+user.Name)
		http.Redirect(w, r, "/index", http.StatusSeeOther)
	}
}

func RegisterPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderHTML(w, "usuario.html", page{Flash: httpx.PopFlash(w, r)})
	}
}

// Register creates a user with the fixed "usuario" role. A duplicate email is
// reported back to the form, never surfaced as a server fault.
func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form credentialsForm
		err := render.DecodeForm(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "register.parse_form")
			return
		}

		err = insertUser(r.Context(), app.DB, form.Name, form.Email, "usuario")
		switch {
		case errors.Is(err, model.ErrDuplicateEmail):
			log.Debug("register.duplicate_email:", form.Email)
			httpx.SetFlash(w, "Ese correo ya está registrado.")
		case err != nil:
			httpx.LogInternalError(w, "db.insert_user", err)
			return
		default:
			httpx.SetFlash(w, "Cuenta creada correctamente. Ahora inicia sesión.")
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func Logout(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Path:     "/",
			Name:     sessionCookie,
			Value:    "",
			MaxAge:   -1,
			HttpOnly: true,
		})
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

func openSession(w http.ResponseWriter, app app.App, user model.User) error {
	jti, err := uuid.NewV4()
	if err != nil {
		return errors.Wrap(err, "session id")
	}

	claims := map[string]any{
		"user_id": user.ID,
		"nombre":  user.Name,
		"jti":     jti.String(),
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, app.SessionTTL)

	_, token, err := app.Session.Encode(claims)
	if err != nil {
		return errors.Wrap(err, "encode token")
	}

	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     sessionCookie,
		Value:    token,
		MaxAge:   int(app.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func findUser(ctx context.Context, db *sql.DB, name, email string) (user model.User, err error) {
	err = db.QueryRowContext(ctx, `
		SELECT id, nombre, correo, rol FROM usuarios
		WHERE nombre = ? AND correo = ?`,
		name, email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return user, model.ErrNotFound
	}
	return user, errors.Wrap(err, "select user")
}

func insertUser(ctx context.Context, db *sql.DB, name, email, role string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO usuarios (nombre, correo, rol) VALUES (?, ?, ?)`,
		name, email, role,
	)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return model.ErrDuplicateEmail
	}
	return errors.Wrap(err, "insert user")
}
