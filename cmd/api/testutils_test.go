package main

import (
	"io"
	"log/slog"
	"testing"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/stretchr/testify/require"

	"critichub/proj/internal/config"
	"critichub/proj/internal/lib/validator"
	"critichub/proj/internal/tokens"
)

// NewTestApplication builds an Application without a storage
// connection, enough for exercising middleware and request plumbing.
func NewTestApplication(cfg *config.Config, t *testing.T) *Application {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := tokens.New("test-secret", time.Hour)
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	require.NoError(t, v.RegisterValidation("slugfield", validator.ValidateSlugField))
	require.NoError(t, v.RegisterValidation("titleyear", validator.ValidateTitleYear))
	queryDecoder := schema.NewDecoder()
	queryDecoder.IgnoreUnknownKeys(true)
	return &Application{
		cfg:          cfg,
		log:          log,
		codec:        codec,
		validator:    v,
		queryDecoder: queryDecoder,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
}
