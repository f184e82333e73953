package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"critichub/proj/internal/domain/filters"
	"critichub/proj/internal/lib/validator"
	"critichub/proj/internal/services/catalog"
	storagemodels "critichub/proj/internal/storage/postgres/models"
)

type listQuery struct {
	Search   string `schema:"search"`
	Page     int    `schema:"page"`
	PageSize int    `schema:"page_size"`
	Sort     string `schema:"sort"`
}

func (q listQuery) filters(defaultSort string, safelist ...string) filters.Filters {
	f := filters.Filters{
		Page:         q.Page,
		PageSize:     q.PageSize,
		Sort:         q.Sort,
		SortSafelist: safelist,
	}
	if f.Sort == "" {
		f.Sort = defaultSort
	}
	f.Normalize()
	return f
}

type slugEntityInput struct {
	Name string `json:"name" validate:"required,max=200"`
	Slug string `json:"slug" validate:"required,max=50,slugfield"`
}

func (app *Application) listCategories(w http.ResponseWriter, r *http.Request) {
	var q listQuery
	if err := app.decodeQuery(r, &q); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	f := q.filters("id", "id", "name", "slug")
	categories, total, err := app.services.Catalog.ListCategories(r.Context(), q.Search, f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"categories": categories,
		"metadata":   filters.CalculateMetadata(total, f),
	}, "")
}

func (app *Application) createCategory(w http.ResponseWriter, r *http.Request) {
	var input slugEntityInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	category, err := app.services.Catalog.CreateCategory(r.Context(), input.Name, input.Slug)
	if err != nil {
		if errors.Is(err, catalog.ErrSlugTaken) {
			app.Http.FieldErrors(w, r, map[string]string{"slug": err.Error()})
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Created(w, r, envelop{"category": category}, "")
}

func (app *Application) deleteCategory(w http.ResponseWriter, r *http.Request) {
	err := app.services.Catalog.DeleteCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) listGenres(w http.ResponseWriter, r *http.Request) {
	var q listQuery
	if err := app.decodeQuery(r, &q); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	f := q.filters("id", "id", "name", "slug")
	genres, total, err := app.services.Catalog.ListGenres(r.Context(), q.Search, f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"genres":   genres,
		"metadata": filters.CalculateMetadata(total, f),
	}, "")
}

func (app *Application) createGenre(w http.ResponseWriter, r *http.Request) {
	var input slugEntityInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	genre, err := app.services.Catalog.CreateGenre(r.Context(), input.Name, input.Slug)
	if err != nil {
		if errors.Is(err, catalog.ErrSlugTaken) {
			app.Http.FieldErrors(w, r, map[string]string{"slug": err.Error()})
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Created(w, r, envelop{"genre": genre}, "")
}

func (app *Application) deleteGenre(w http.ResponseWriter, r *http.Request) {
	err := app.services.Catalog.DeleteGenre(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrGenreNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.NoContent(w, r, "")
}

type titleListQuery struct {
	listQuery
	Category string `schema:"category"`
	Genre    string `schema:"genre"`
	Name     string `schema:"name"`
	Year     int32  `schema:"year"`
}

func (app *Application) listTitles(w http.ResponseWriter, r *http.Request) {
	var q titleListQuery
	if err := app.decodeQuery(r, &q); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	f := q.filters("year", "id", "name", "year")
	titles, total, err := app.services.Catalog.ListTitles(r.Context(), storagemodels.TitleFilter{
		CategorySlug: q.Category,
		GenreSlug:    q.Genre,
		Name:         q.Name,
		Year:         q.Year,
	}, f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"titles":   titles,
		"metadata": filters.CalculateMetadata(total, f),
	}, "")
}

func (app *Application) getTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	title, err := app.services.Catalog.GetTitle(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrTitleNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{"title": title}, "")
}

type createTitleInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Year        int32    `json:"year" validate:"titleyear"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	Category    string   `json:"category" validate:"omitempty,slugfield"`
	Genre       []string `json:"genre" validate:"omitempty,dive,slugfield"`
}

func (app *Application) createTitle(w http.ResponseWriter, r *http.Request) {
	var input createTitleInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	title, err := app.services.Catalog.CreateTitle(r.Context(), input.Name, input.Year, input.Description, input.Category, input.Genre)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrCategoryNotFound):
			app.Http.FieldErrors(w, r, map[string]string{"category": "Unknown category slug"})
		case errors.Is(err, catalog.ErrGenreNotFound):
			app.Http.FieldErrors(w, r, map[string]string{"genre": "Unknown genre slug"})
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Created(w, r, envelop{"title": title}, "")
}

type updateTitleInput struct {
	Name        *string  `json:"name" validate:"omitempty,max=200"`
	Year        *int32   `json:"year" validate:"omitempty,titleyear"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Category    *string  `json:"category" validate:"omitempty,slugfield"`
	Genre       []string `json:"genre" validate:"omitempty,dive,slugfield"`
}

func (app *Application) updateTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	var input updateTitleInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	title, err := app.services.Catalog.UpdateTitle(r.Context(), id, catalog.UpdateTitleParams{
		Name:         input.Name,
		Year:         input.Year,
		Description:  input.Description,
		CategorySlug: input.Category,
		GenreSlugs:   input.Genre,
	})
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrTitleNotFound):
			app.Http.NotFound(w, r, err.Error())
		case errors.Is(err, catalog.ErrCategoryNotFound):
			app.Http.FieldErrors(w, r, map[string]string{"category": "Unknown category slug"})
		case errors.Is(err, catalog.ErrGenreNotFound):
			app.Http.FieldErrors(w, r, map[string]string{"genre": "Unknown genre slug"})
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, envelop{"title": title}, "")
}

func (app *Application) deleteTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.services.Catalog.DeleteTitle(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrTitleNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.NoContent(w, r, "")
}
