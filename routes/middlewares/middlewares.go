package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"github.com/encuestapp/sist-evaluacion/httpx"
)

// Session verifies the signed session cookie once at the request boundary.
// Handlers downstream read identity from the verified claims only.
func Session(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(jwtauth.Verify(ja, jwtauth.TokenFromCookie), authenticate).Handler(next)
	}
}

func authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// missing, malformed and expired tokens all land here
		if _, ok := UserID(r); !ok {
			httpx.SetFlash(w, "Debes iniciar sesión.")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// UserID returns the logged-in user's id from the session claims.
// Numeric claims come back as float64 after a JSON round trip.
func UserID(r *http.Request) (int, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0, false
	}

	switch id := claims["user_id"].(type) {
	case float64:
		return int(id), true
	case int64:
		return int(id), true
	case int:
		return id, true
	}
	return 0, false
}

// UserName returns the logged-in user's display name, if any.
func UserName(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}

	name, _ := claims["nombre"].(string)
	return name
}
