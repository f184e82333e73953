package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"critichub/proj/internal/domain/filters"
	"critichub/proj/internal/lib/validator"
	"critichub/proj/internal/services/users"
)

func (app *Application) userErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, users.ErrReservedUsername):
		app.Http.FieldErrors(w, r, map[string]string{"username": "This username is reserved"})
	case errors.Is(err, users.ErrUsernameTaken):
		app.Http.FieldErrors(w, r, map[string]string{"username": err.Error()})
	case errors.Is(err, users.ErrEmailTaken):
		app.Http.FieldErrors(w, r, map[string]string{"email": err.Error()})
	default:
		app.Http.ServerError(w, r, err, "")
	}
}

func (app *Application) listUsers(w http.ResponseWriter, r *http.Request) {
	var q listQuery
	if err := app.decodeQuery(r, &q); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	f := q.filters("id", "id", "username", "email")
	list, total, err := app.services.Users.List(r.Context(), q.Search, f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"users":    list,
		"metadata": filters.CalculateMetadata(total, f),
	}, "")
}

func (app *Application) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := app.services.Users.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		app.userErrorResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "")
}

type createUserInput struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name" validate:"omitempty,max=150"`
	Bio       string `json:"bio" validate:"omitempty,max=5000"`
	Role      string `json:"role" validate:"omitempty,oneof=user moderator admin"`
	Password  string `json:"password" validate:"omitempty,min=8,max=72"`
}

func (app *Application) createUser(w http.ResponseWriter, r *http.Request) {
	var input createUserInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	user, err := app.services.Users.Create(r.Context(), users.CreateUserParams{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
		Role:      input.Role,
		Password:  input.Password,
	})
	if err != nil {
		app.userErrorResponse(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"user": user}, "")
}

type updateUserInput struct {
	Username  *string `json:"username" validate:"omitempty,max=150"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio" validate:"omitempty,max=5000"`
	Role      *string `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

func (app *Application) updateUser(w http.ResponseWriter, r *http.Request) {
	var input updateUserInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	user, err := app.services.Users.Update(r.Context(), chi.URLParam(r, "username"), users.UpdateUserParams{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
		Role:      input.Role,
	})
	if err != nil {
		app.userErrorResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "")
}

func (app *Application) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := app.services.Users.Delete(r.Context(), chi.URLParam(r, "username")); err != nil {
		app.userErrorResponse(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) getMe(w http.ResponseWriter, r *http.Request) {
	app.Http.Ok(w, r, envelop{"user": actorFromContext(r)}, "")
}

// updateMe accepts the same body shape as the admin update but has no
// role field, so self-promotion is impossible by construction.
type updateMeInput struct {
	Username  *string `json:"username" validate:"omitempty,max=150"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio" validate:"omitempty,max=5000"`
}

func (app *Application) updateMe(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := app.readJSON(w, r, &raw); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	// role is stripped, not rejected, matching the tolerant behavior of
	// the admin-vs-self distinction: the rest of the update still runs.
	delete(raw, "role")
	input, err := decodeMap[updateMeInput](raw)
	if err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	user, err := app.services.Users.UpdateProfile(r.Context(), actorFromContext(r).ID, users.ProfileParams{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
	})
	if err != nil {
		app.userErrorResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "")
}
