package factory

import (
	"github.com/rs/zerolog"

	"github.com/aurora-chat/aurora/internal/auth"
	"github.com/aurora-chat/aurora/internal/config"
	"github.com/aurora-chat/aurora/internal/store"
)

// NewAuthenticator returns the token authenticator, or the hardcoded dev
// authenticator when DevMode is set.
func NewAuthenticator(cfg *config.Config, users store.Users, log zerolog.Logger) auth.Authenticator {
	if cfg.DevMode {
		log.Warn().Msg("DEV_MODE enabled; accepting the local development token only")
		return auth.NewMockAuthenticator()
	}
	return auth.NewTokenAuthenticator(users)
}
