package services

import (
	"log/slog"

	"critichub/proj/internal/config"
	"critichub/proj/internal/mails"
	"critichub/proj/internal/services/auth"
	"critichub/proj/internal/services/catalog"
	"critichub/proj/internal/services/reviews"
	"critichub/proj/internal/services/users"
	"critichub/proj/internal/storage/postgres"
	"critichub/proj/internal/storage/postgres/models"
	"critichub/proj/internal/tokens"
)

type Services struct {
	Auth    *auth.AuthService
	Catalog *catalog.CatalogService
	Reviews *reviews.ReviewService
	Users   *users.UserService
}

func New(log *slog.Logger, cfg *config.Config, storage *postgres.Storage, codec *tokens.Codec) *Services {
	mailer := mails.New(
		cfg.SMTPServer.Host,
		cfg.SMTPServer.Port,
		cfg.SMTPServer.Timeout,
		cfg.SMTPServer.Username,
		cfg.SMTPServer.Password,
		cfg.SMTPServer.Sender,
	)
	m := models.New(storage)
	return &Services{
		Auth:    auth.New(log, m.Users, mailer, codec),
		Catalog: catalog.New(log, m.Categories, m.Genres, m.Titles, m.Reviews),
		Reviews: reviews.New(log, m.Titles, m.Reviews, m.Comments),
		Users:   users.New(log, m.Users),
	}
}
