package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"docgate/internal/core/apperror"
	"docgate/pkg/logger"
)

const (
	testSharedSecret = "0123456789abcdef"
	testSigningKey   = "unit-test-signing-key"
	testPassphrase   = "unit-test-passphrase"
)

func localFixture(t *testing.T) (*LocalValidator, LocalConfig, *EncryptionManager) {
	t.Helper()
	cfg := LocalConfig{
		RequiresAuth: true,
		AuthToken:    testSharedSecret,
		JWTSecret:    testSigningKey,
	}
	enc, err := NewEncryptionManager(testPassphrase)
	if err != nil {
		t.Fatalf("encryption manager: %v", err)
	}
	return NewLocalValidator(cfg, enc), cfg, enc
}

func assertUnauthorized(t *testing.T, err error, message string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.HTTPStatus != 401 {
		t.Fatalf("expected 401, got %v", err)
	}
	if appErr.Message != message {
		t.Errorf("expected message %q, got %q", message, appErr.Message)
	}
}

func TestLocalValidator_AuthDisabled(t *testing.T) {
	enc, _ := NewEncryptionManager(testPassphrase)
	v := NewLocalValidator(LocalConfig{RequiresAuth: false}, enc)

	user, err := v.Authenticate(context.Background(), "anything at all")
	if err != nil {
		t.Fatalf("disabled auth must accept everything, got %v", err)
	}
	if user != nil {
		t.Errorf("no principal expected, got %+v", user)
	}
}

func TestLocalValidator_Bypass(t *testing.T) {
	tests := []struct {
		name string
		cfg  LocalConfig
	}{
		{"development", LocalConfig{RequiresAuth: true, AuthToken: testSharedSecret, JWTSecret: testSigningKey, Development: true}},
		{"missing auth token", LocalConfig{RequiresAuth: true, JWTSecret: testSigningKey}},
		{"missing jwt secret", LocalConfig{RequiresAuth: true, AuthToken: testSharedSecret}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, _ := NewEncryptionManager(testPassphrase)
			v := NewLocalValidator(tt.cfg, enc)
			if _, err := v.Authenticate(context.Background(), "garbage"); err != nil {
				t.Errorf("bypass must authorize unconditionally, got %v", err)
			}
		})
	}
}

func TestLocalValidator_BypassWarnsOnEveryRequest(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx := logger.WithLogger(context.Background(), &logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	enc, _ := NewEncryptionManager(testPassphrase)
	v := NewLocalValidator(LocalConfig{RequiresAuth: true, JWTSecret: testSigningKey}, enc)

	for i := 0; i < 2; i++ {
		user, err := v.Authenticate(ctx, "")
		if err != nil {
			t.Fatalf("bypass must authorize, got %v", err)
		}
		if user != nil {
			t.Fatalf("no principal expected, got %+v", user)
		}
	}

	warned := logs.FilterMessage("single-user auth bypass active, request authorized without validation").All()
	if len(warned) != 2 {
		t.Fatalf("expected a warning per bypassed request, got %d", len(warned))
	}
}

func TestLocalValidator_MissingToken(t *testing.T) {
	v, _, _ := localFixture(t)
	_, err := v.Authenticate(context.Background(), "")
	assertUnauthorized(t, err, "No auth token found.")
}

func TestLocalValidator_MalformedToken(t *testing.T) {
	v, cfg, _ := localFixture(t)

	// Structurally valid JWT whose payload claim is not the expected shape.
	wrongShape := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"p": "not-an-encrypted-payload"})
	signed, err := wrongShape.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.jwt"},
		{"wrong payload shape", signed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Authenticate(context.Background(), tt.token)
			assertUnauthorized(t, err, "Token expired or failed validation.")
		})
	}
}

func TestLocalValidator_WrongSignature(t *testing.T) {
	v, cfg, enc := localFixture(t)

	payload, err := enc.Encrypt(cfg.AuthToken)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"p": payload})
	signed, err := token.SignedString([]byte("a different signing key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, authErr := v.Authenticate(context.Background(), signed)
	assertUnauthorized(t, authErr, "Token expired or failed validation.")
}

func TestLocalValidator_WrongSecret(t *testing.T) {
	v, cfg, enc := localFixture(t)

	// Well-formed token carrying an encrypted secret that is not the
	// configured one. Same length so the payload shape still matches.
	payload, err := enc.Encrypt("fedcba9876543210")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"p": payload})
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, authErr := v.Authenticate(context.Background(), signed)
	assertUnauthorized(t, authErr, "Invalid auth credentials.")
}

func TestLocalValidator_ValidToken(t *testing.T) {
	v, cfg, enc := localFixture(t)

	signed, err := IssueLocalToken(cfg, enc)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	user, err := v.Authenticate(context.Background(), signed)
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if user != nil {
		t.Errorf("single-user mode attaches no principal, got %+v", user)
	}
}

func TestEncryptionManager_RoundTrip(t *testing.T) {
	enc, err := NewEncryptionManager(testPassphrase)
	if err != nil {
		t.Fatalf("encryption manager: %v", err)
	}

	payload, err := enc.Encrypt(testSharedSecret)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if !payloadPattern.MatchString(payload) {
		t.Errorf("payload %q does not match the expected shape", payload)
	}

	plain, err := enc.Decrypt(payload)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != testSharedSecret {
		t.Errorf("round trip mismatch: got %q", plain)
	}
}

func TestEncryptionManager_RejectsMalformedPayload(t *testing.T) {
	enc, _ := NewEncryptionManager(testPassphrase)
	for _, payload := range []string{"", "no-colon", "zz:zz", "abcd:1234"} {
		if _, err := enc.Decrypt(payload); err == nil {
			t.Errorf("payload %q must be rejected", payload)
		}
	}
}
