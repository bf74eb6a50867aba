// Package admin gates the back office behind the device PIN.
package admin

import (
	"context"
	"time"

	"github.com/angelmondragon/kioskeats-backend/pkg/auth"
	"github.com/angelmondragon/kioskeats-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/kioskeats-backend/pkg/errors"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
	"github.com/angelmondragon/kioskeats-backend/pkg/security"
)

// LoginInput carries the PIN entered on the back-office keypad.
type LoginInput struct {
	Pin string `json:"pin" validate:"required,min=4,max=12,numeric"`
}

// LoginResult is the minted session token.
type LoginResult struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Service verifies the configured PIN and mints admin session tokens.
type Service struct {
	pinCfg config.PinConfig
	jwtCfg config.JWTConfig
	logg   *logger.Logger
}

func NewService(pinCfg config.PinConfig, jwtCfg config.JWTConfig, logg *logger.Logger) (*Service, error) {
	if pinCfg.Hash == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pin hash is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &Service{pinCfg: pinCfg, jwtCfg: jwtCfg, logg: logg}, nil
}

// Login checks the PIN against the stored Argon2id hash. A wrong PIN and
// a malformed stored hash both come back as unauthorized; the details
// stay in the server log.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	match, err := security.VerifyPin(input.Pin, s.pinCfg.Hash)
	if err != nil {
		s.logg.Error(ctx, "verifying pin hash", err)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid pin")
	}
	if !match {
		s.logg.Warn(ctx, "back-office login rejected")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid pin")
	}

	now := time.Now().UTC()
	token, err := auth.MintAccessToken(s.jwtCfg, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	s.logg.Info(ctx, "back-office login accepted")
	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
	}, nil
}
