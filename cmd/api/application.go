package main

import (
	"log/slog"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"critichub/proj/internal/config"
	"critichub/proj/internal/lib/validator"
	"critichub/proj/internal/services"
	"critichub/proj/internal/storage/postgres"
	"critichub/proj/internal/tokens"
)

type Application struct {
	cfg          *config.Config
	log          *slog.Logger
	Http         *Http
	services     *services.Services
	codec        *tokens.Codec
	validator    *govalidator.Validate
	queryDecoder *schema.Decoder
}

func NewApplication(cfg *config.Config, log *slog.Logger, storage *postgres.Storage) *Application {
	codec := tokens.New(cfg.Auth.Secret, cfg.Auth.AccessTokenTTL)
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("slugfield", validator.ValidateSlugField); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("titleyear", validator.ValidateTitleYear); err != nil {
		panic(err)
	}
	queryDecoder := schema.NewDecoder()
	queryDecoder.IgnoreUnknownKeys(true)
	return &Application{
		cfg:          cfg,
		log:          log,
		services:     services.New(log, cfg, storage, codec),
		codec:        codec,
		validator:    v,
		queryDecoder: queryDecoder,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
}
