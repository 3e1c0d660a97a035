package app

import (
	"database/sql"

	"github.com/go-chi/jwtauth/v5"

	"github.com/encuestapp/sist-evaluacion/config"
)

type App struct {
	*sql.DB
	Session *jwtauth.JWTAuth
	config.Config
}
