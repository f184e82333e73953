package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"critichub/proj/internal/domain/models"
	"critichub/proj/internal/permissions"
	"critichub/proj/internal/services/users"
)

func (app *Application) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil && err != http.ErrAbortHandler {
				app.Http.ServerError(w, r, err.(error), "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) RateLimiter(next http.Handler) http.Handler {
	const op = "middlewares.RateLimiter"
	log := app.log.With("op", op)
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	clients := make(map[string]*client)
	var mu sync.Mutex
	go func() {
		for {
			mu.Lock()
			for ip, client := range clients {
				if time.Since(client.lastSeen) > 5*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
			time.Sleep(5 * time.Minute)
		}
	}()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.cfg.Limiter.Enabled {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				app.Http.ServerError(w, r, err, "")
				return
			}
			mu.Lock()
			if _, ok := clients[ip]; !ok {
				clients[ip] = &client{
					limiter:  rate.NewLimiter(rate.Limit(app.cfg.Limiter.Rps), app.cfg.Limiter.Burst),
					lastSeen: time.Now(),
				}
			}
			clients[ip].lastSeen = time.Now()
			limiter := clients[ip].limiter
			mu.Unlock()
			if !limiter.Allow() {
				log.Warn("rate limit exceeded", "ip", ip)
				app.Http.Response(
					w, r,
					envelop{"error": "rate limit exceeded"},
					"Can't process request see an error below.",
					http.StatusTooManyRequests,
				)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type CtxKey string

const (
	CtxKeyUser  CtxKey = "user"
	CtxKeyToken CtxKey = "token"
)

// Authenticate resolves the request actor from a Bearer access token.
// Requests without a token proceed as the anonymous user; the
// permission layer decides what they may do.
func (app *Application) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := models.AnonymousUser
		token := ""

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			const bearerLength = len("Bearer ")
			if !strings.HasPrefix(authHeader, "Bearer ") || len(authHeader) < bearerLength+1 {
				app.Http.BadRequest(w, r, "Invalid Authorization header, should be 'Bearer <token>'")
				return
			}
			token = strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := app.codec.ParseAccessToken(token)
			if err != nil {
				app.Http.Unauthorized(w, r, "Invalid or expired token")
				return
			}
			user, err = app.services.Users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, users.ErrUserNotFound) {
					app.Http.Unauthorized(w, r, "Invalid or expired token")
					return
				}
				app.Http.ServerError(w, r, err, "")
				return
			}
		}
		ctx := context.WithValue(r.Context(), CtxKeyUser, user)
		ctx = context.WithValue(ctx, CtxKeyToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *Application) requireAuthenticatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actorFromContext(r).IsAnonymous() {
			app.Http.Unauthorized(w, r, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdminOrReadOnly gates catalog mutation. For unsafe methods the
// token's role claim is consulted first, skipping any further signal
// checks when the claim alone already grants admin.
func (app *Application) requireAdminOrReadOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if permissions.IsSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		if app.codec.RoleOf(tokenFromContext(r)) == models.RoleAdmin {
			next.ServeHTTP(w, r)
			return
		}
		if !permissions.AdminOrReadOnly(actorFromContext(r), r.Method) {
			app.Http.Forbidden(w, r, "You don't have permission to modify the catalog")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromContext(r)
		if actor.IsAnonymous() {
			app.Http.Unauthorized(w, r, "Authentication required")
			return
		}
		if !permissions.AdminOnly(actor) {
			app.Http.Forbidden(w, r, "Administrator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuthenticatedForWrites is the request-level tier for reviews
// and comments: anyone may read, any authenticated user may attempt a
// write. Object-level author/moderator checks happen in the handlers
// once the resource is loaded.
func (app *Application) requireAuthenticatedForWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromContext(r)
		if !permissions.ModeratorOrAuthorOrReadOnly(actor, r.Method) {
			app.Http.Unauthorized(w, r, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
