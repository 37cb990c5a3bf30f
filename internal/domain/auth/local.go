package auth

import (
	"context"
	"fmt"
	"regexp"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"docgate/internal/core/apperror"
	"docgate/pkg/logger"
)

// Authenticator validates the bearer token of an inbound request and returns
// the local principal to attach, or nil when the request is authorized without
// one (single-user deployments). The implementation is chosen once at startup;
// a request is never validated under one strategy and authorized under another.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*LocalUser, error)
}

// payloadPattern is the expected shape of the encrypted secret embedded in
// single-user tokens: hex IV and hex ciphertext separated by a colon.
var payloadPattern = regexp.MustCompile(`\w{32}:\w{32}`)

// LocalConfig configures single-user validation. Resolved once at startup.
type LocalConfig struct {
	// RequiresAuth disables all validation when false: the deployment has
	// turned auth off and every request is authorized without a principal.
	RequiresAuth bool

	// AuthToken is the single shared secret.
	AuthToken string

	// JWTSecret signs self-issued tokens.
	JWTSecret string

	// Development marks the development bypass configuration.
	Development bool
}

// BypassActive reports whether validation is skipped entirely. Either secret
// missing, or a development configuration, turns the bypass on.
func (c LocalConfig) BypassActive() bool {
	return c.Development || c.AuthToken == "" || c.JWTSecret == ""
}

// LocalValidator validates self-issued tokens against the single shared
// secret with no network call. Used only outside multi-user mode.
type LocalValidator struct {
	cfg LocalConfig
	enc *EncryptionManager
}

// NewLocalValidator creates the single-user authenticator.
func NewLocalValidator(cfg LocalConfig, enc *EncryptionManager) *LocalValidator {
	return &LocalValidator{cfg: cfg, enc: enc}
}

// Authenticate implements Authenticator. A nil user with nil error means the
// request is authorized with no principal attached.
func (v *LocalValidator) Authenticate(ctx context.Context, token string) (*LocalUser, error) {
	if !v.cfg.RequiresAuth {
		return nil, nil
	}

	// Operational bypass: secrets unset or development configuration.
	// Deliberately loud so a misconfigured production deployment is visible
	// in the logs on every request.
	if v.cfg.BypassActive() {
		logger.Warn(ctx, "single-user auth bypass active, request authorized without validation",
			"development", v.cfg.Development,
			"auth_token_set", v.cfg.AuthToken != "",
			"jwt_secret_set", v.cfg.JWTSecret != "",
		)
		return nil, nil
	}

	if token == "" {
		return nil, apperror.NewUnauthorized("No auth token found.")
	}

	payload, err := v.decodePayload(token)
	if err != nil || !payloadPattern.MatchString(payload) {
		return nil, apperror.NewUnauthorized("Token expired or failed validation.")
	}

	secret, err := v.enc.Decrypt(payload)
	if err != nil {
		return nil, apperror.NewUnauthorized("Token expired or failed validation.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(v.cfg.AuthToken), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hash shared secret: %w", err))
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(secret)) != nil {
		return nil, apperror.NewUnauthorized("Invalid auth credentials.")
	}

	return nil, nil
}

// decodePayload parses the signed token and extracts the embedded encrypted
// secret from the "p" claim.
func (v *LocalValidator) decodePayload(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.cfg.JWTSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	payload, ok := claims["p"].(string)
	if !ok || payload == "" {
		return "", fmt.Errorf("missing payload claim")
	}
	return payload, nil
}

// IssueLocalToken signs a token carrying the encrypted shared secret.
// Single-user deployments hand this to the client on login.
func IssueLocalToken(cfg LocalConfig, enc *EncryptionManager) (string, error) {
	payload, err := enc.Encrypt(cfg.AuthToken)
	if err != nil {
		return "", fmt.Errorf("encrypt payload: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"p": payload})
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
