package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(app.RateLimiter)
	router.Use(app.Authenticate)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", app.healthcheck)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", app.signup)
			r.Post("/token", app.exchangeToken)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Use(app.requireAdminOrReadOnly)
			r.Get("/", app.listCategories)
			r.Post("/", app.createCategory)
			r.Delete("/{slug}", app.deleteCategory)
		})
		r.Route("/genres", func(r chi.Router) {
			r.Use(app.requireAdminOrReadOnly)
			r.Get("/", app.listGenres)
			r.Post("/", app.createGenre)
			r.Delete("/{slug}", app.deleteGenre)
		})
		r.Route("/titles", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(app.requireAdminOrReadOnly)
				r.Get("/", app.listTitles)
				r.Post("/", app.createTitle)
				r.Get("/{id}", app.getTitle)
				r.Patch("/{id}", app.updateTitle)
				r.Delete("/{id}", app.deleteTitle)
			})
			r.Route("/{titleID}/reviews", func(r chi.Router) {
				r.Use(app.requireAuthenticatedForWrites)
				r.Get("/", app.listReviews)
				r.Post("/", app.createReview)
				r.Get("/{reviewID}", app.getReview)
				r.Patch("/{reviewID}", app.updateReview)
				r.Delete("/{reviewID}", app.deleteReview)
				r.Route("/{reviewID}/comments", func(r chi.Router) {
					r.Get("/", app.listComments)
					r.Post("/", app.createComment)
					r.Get("/{commentID}", app.getComment)
					r.Patch("/{commentID}", app.updateComment)
					r.Delete("/{commentID}", app.deleteComment)
				})
			})
		})
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(app.requireAuthenticatedUser)
				r.Get("/me", app.getMe)
				r.Patch("/me", app.updateMe)
			})
			r.Group(func(r chi.Router) {
				r.Use(app.requireAdmin)
				r.Get("/", app.listUsers)
				r.Post("/", app.createUser)
				r.Get("/{username}", app.getUser)
				r.Patch("/{username}", app.updateUser)
				r.Delete("/{username}", app.deleteUser)
			})
		})
	})
	return router
}
