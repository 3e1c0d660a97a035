package model

import "errors"

var (
	// ErrDuplicateEmail signals a registration with an already-taken email.
	ErrDuplicateEmail = errors.New("correo already registered")
	// ErrNotFound signals a missing survey or user.
	ErrNotFound = errors.New("not found")
	// ErrNotOwner signals a delete attempt by someone other than the creator.
	ErrNotOwner = errors.New("not the survey owner")
	// ErrMalformedSubmission signals a form missing expected fields.
	ErrMalformedSubmission = errors.New("malformed submission")
)

type User struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"nombre"`
	Email string `json:"correo"`
	Role  string `json:"rol"`
}

type Survey struct {
	ID          int    `json:"id,omitempty"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	CreatedAt   string `json:"fecha_creacion"`
	OwnerID     int    `json:"id_usuario"`
}

type Question struct {
	ID       int    `json:"id,omitempty"`
	SurveyID int    `json:"id_encuesta"`
	Text     string `json:"texto_pregunta"`
	Type     string `json:"tipo"`
}

type Answer struct {
	ID         int    `json:"id,omitempty"`
	QuestionID int    `json:"id_pregunta"`
	UserID     int    `json:"id_usuario"`
	Text       string `json:"respuesta_texto"`
	Value      string `json:"valor"`
}
