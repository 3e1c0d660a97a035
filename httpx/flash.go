package httpx

import (
	"encoding/base64"
	"net/http"
)

const flashCookie = "flash"

// SetFlash queues a one-shot notice for the next page render.
// The value is base64-encoded: flash texts contain spaces and accents,
// neither of which survive in a raw cookie value.
func SetFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString([]byte(msg)),
		HttpOnly: true,
	})
}

// PopFlash returns the pending notice, if any, and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     flashCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
	})

	msg, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}
