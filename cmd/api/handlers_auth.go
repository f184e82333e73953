package main

import (
	"errors"
	"net/http"

	"critichub/proj/internal/lib/validator"
	"critichub/proj/internal/services/auth"
)

type signupInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

func (app *Application) signup(w http.ResponseWriter, r *http.Request) {
	var input signupInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	user, err := app.services.Auth.Signup(r.Context(), input.Username, input.Email)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrReservedUsername):
			app.Http.FieldErrors(w, r, map[string]string{"username": "This username is reserved"})
		case errors.Is(err, auth.ErrUsernameTaken):
			app.Http.FieldErrors(w, r, map[string]string{"username": err.Error()})
		case errors.Is(err, auth.ErrEmailTaken):
			app.Http.FieldErrors(w, r, map[string]string{"email": err.Error()})
		case errors.Is(err, auth.ErrMailDispatch):
			app.Http.ServerError(w, r, err, "Failed to send the confirmation email. Please try again later.")
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, envelop{"username": user.Username, "email": user.Email},
		"Check your email for a confirmation code")
}

type tokenExchangeInput struct {
	Username         string `json:"username" validate:"required"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

func (app *Application) exchangeToken(w http.ResponseWriter, r *http.Request) {
	var input tokenExchangeInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	token, err := app.services.Auth.TokenExchange(r.Context(), input.Username, input.ConfirmationCode)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			app.Http.NotFound(w, r, err.Error())
		case errors.Is(err, auth.ErrForgedCode):
			app.Http.BadRequest(w, r, err.Error())
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, envelop{"token": token}, "")
}
