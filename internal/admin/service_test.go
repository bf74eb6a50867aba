package admin

import (
	"context"
	"io"
	"testing"

	"github.com/angelmondragon/kioskeats-backend/pkg/auth"
	"github.com/angelmondragon/kioskeats-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/kioskeats-backend/pkg/errors"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
	"github.com/angelmondragon/kioskeats-backend/pkg/security"
)

func testConfigs(t *testing.T, pin string) (config.PinConfig, config.JWTConfig) {
	t.Helper()
	pinCfg := config.PinConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	hash, err := security.HashPin(pin, pinCfg)
	if err != nil {
		t.Fatalf("HashPin: %v", err)
	}
	pinCfg.Hash = hash

	jwtCfg := config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "kioskeats",
		ExpirationMinutes: 30,
	}
	return pinCfg, jwtCfg
}

func newTestService(t *testing.T, pin string) (*Service, config.JWTConfig) {
	t.Helper()
	pinCfg, jwtCfg := testConfigs(t, pin)
	svc, err := NewService(pinCfg, jwtCfg, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, jwtCfg
}

func TestLoginMintsVerifiableToken(t *testing.T) {
	t.Parallel()

	svc, jwtCfg := newTestService(t, "4821")

	result, err := svc.Login(context.Background(), LoginInput{Pin: "4821"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.AccessToken == "" || result.ExpiresAt.IsZero() {
		t.Fatalf("result = %+v", result)
	}

	claims, err := auth.ParseAccessToken(jwtCfg, result.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Role != auth.RoleAdmin {
		t.Fatalf("role = %q, want %q", claims.Role, auth.RoleAdmin)
	}
}

func TestLoginRejectsWrongPin(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, "4821")

	_, err := svc.Login(context.Background(), LoginInput{Pin: "0000"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestLoginMalformedStoredHashIsUnauthorized(t *testing.T) {
	t.Parallel()

	_, jwtCfg := newTestService(t, "4821")
	svc, err := NewService(config.PinConfig{Hash: "not-a-hash"}, jwtCfg,
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginInput{Pin: "4821"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}
