package app

import (
	"fmt"
	"log/slog"

	"github.com/todopilot/pilot/pkg/cryptox"
	"github.com/todopilot/pilot/pkg/jwtx"
)

// InitSigningKey builds the HS256 key that signs verification and session
// tokens.
//
// Outside dev JWT_SECRET is mandatory. In dev a missing secret is replaced
// by a random one, which invalidates every outstanding token on restart.
func InitSigningKey(cfg Config, logger *slog.Logger) (*jwtx.HS256, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.Env != "dev" {
			return nil, fmt.Errorf("JWT_SECRET is required in %s", cfg.Env)
		}

		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing secret: %w", err)
		}
		secret = generated
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	key, err := jwtx.NewHS256([]byte(secret), cfg.TokenIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signing key: %w", err)
	}
	return key, nil
}
