package main

import (
	"errors"
	"net/http"

	"critichub/proj/internal/domain/filters"
	"critichub/proj/internal/lib/validator"
	"critichub/proj/internal/permissions"
	"critichub/proj/internal/services/reviews"
)

func (app *Application) reviewErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reviews.ErrTitleNotFound),
		errors.Is(err, reviews.ErrReviewNotFound),
		errors.Is(err, reviews.ErrCommentNotFound):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, reviews.ErrReviewExists):
		app.Http.BadRequest(w, r, err.Error())
	default:
		app.Http.ServerError(w, r, err, "")
	}
}

func (app *Application) listReviews(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	var q listQuery
	if err := app.decodeQuery(r, &q); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	f := q.filters("-created_at", "id", "score", "created_at")
	list, total, err := app.services.Reviews.List(r.Context(), titleID, f)
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{
		"reviews":  list,
		"metadata": filters.CalculateMetadata(total, f),
	}, "")
}

func (app *Application) getReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	review, err := app.services.Reviews.Get(r.Context(), titleID, reviewID)
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"review": review}, "")
}

type createReviewInput struct {
	Text  string `json:"text" validate:"required,max=10000"`
	Score int    `json:"score" validate:"required,min=1,max=10" errorMsg:"Score must be between 1 and 10"`
}

func (app *Application) createReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	var input createReviewInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	review, err := app.services.Reviews.Create(r.Context(), titleID, actorFromContext(r), input.Text, input.Score)
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"review": review}, "")
}

type updateReviewInput struct {
	Text  *string `json:"text" validate:"omitempty,max=10000"`
	Score *int    `json:"score" validate:"omitempty,min=1,max=10" errorMsg:"Score must be between 1 and 10"`
}

func (app *Application) updateReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	var input updateReviewInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	review, err := app.services.Reviews.Get(r.Context(), titleID, reviewID)
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	if !permissions.ModeratorOrAuthorOrReadOnlyObject(actorFromContext(r), r.Method, review.AuthorID) {
		app.Http.Forbidden(w, r, "You can only edit your own reviews")
		return
	}
	updated, err := app.services.Reviews.Update(r.Context(), titleID, reviewID, reviews.UpdateReviewParams{
		Text:  input.Text,
		Score: input.Score,
	})
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"review": updated}, "")
}

func (app *Application) deleteReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	review, err := app.services.Reviews.Get(r.Context(), titleID, reviewID)
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	if !permissions.ModeratorOrAuthorOrReadOnlyObject(actorFromContext(r), r.Method, review.AuthorID) {
		app.Http.Forbidden(w, r, "You can only delete your own reviews")
		return
	}
	if err := app.services.Reviews.Delete(r.Context(), titleID, reviewID); err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) listComments(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	var q listQuery
	if err := app.decodeQuery(r, &q); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	f := q.filters("created_at", "id", "created_at")
	list, total, err := app.services.Reviews.ListComments(r.Context(), titleID, reviewID, f)
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{
		"comments": list,
		"metadata": filters.CalculateMetadata(total, f),
	}, "")
}

func (app *Application) getComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	commentID, ok := app.extractIDParam(w, r, "commentID")
	if !ok {
		return
	}
	comment, err := app.services.Reviews.GetComment(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"comment": comment}, "")
}

type commentInput struct {
	Text string `json:"text" validate:"required,max=5000"`
}

func (app *Application) createComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	var input commentInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	comment, err := app.services.Reviews.CreateComment(r.Context(), titleID, reviewID, actorFromContext(r), input.Text)
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"comment": comment}, "")
}

func (app *Application) updateComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	commentID, ok := app.extractIDParam(w, r, "commentID")
	if !ok {
		return
	}
	var input commentInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, input); errs != nil {
		app.Http.FieldErrors(w, r, errs)
		return
	}
	comment, err := app.services.Reviews.GetComment(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	if !permissions.ModeratorOrAuthorOrReadOnlyObject(actorFromContext(r), r.Method, comment.AuthorID) {
		app.Http.Forbidden(w, r, "You can only edit your own comments")
		return
	}
	updated, err := app.services.Reviews.UpdateComment(r.Context(), titleID, reviewID, commentID, input.Text)
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"comment": updated}, "")
}

func (app *Application) deleteComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	commentID, ok := app.extractIDParam(w, r, "commentID")
	if !ok {
		return
	}
	comment, err := app.services.Reviews.GetComment(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	if !permissions.ModeratorOrAuthorOrReadOnlyObject(actorFromContext(r), r.Method, comment.AuthorID) {
		app.Http.Forbidden(w, r, "You can only delete your own comments")
		return
	}
	if err := app.services.Reviews.DeleteComment(r.Context(), titleID, reviewID, commentID); err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}
