package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgAuth "github.com/afrifood/afrifood-backend/pkg/auth"
	"github.com/afrifood/afrifood-backend/pkg/config"
	"github.com/afrifood/afrifood-backend/pkg/db/dbtest"
	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
)

type fakeSessions struct {
	opened  map[string]string
	revoked []string
	openErr error
}

func (f *fakeSessions) Open(_ context.Context, accessID, adminID string) error {
	if f.openErr != nil {
		return f.openErr
	}
	if f.opened == nil {
		f.opened = map[string]string{}
	}
	f.opened[accessID] = adminID
	return nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

var (
	testJWT = config.JWTConfig{Secret: "secret", Issuer: "afrifood", ExpirationMinutes: 30}
	// Small argon2 parameters keep the tests fast.
	testPassword = config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	// Tokens are parsed against the wall clock, so the fixed clock tracks it.
	testNow = time.Now().UTC().Truncate(time.Second)
)

func buildTestService(t *testing.T, sessions *fakeSessions) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(ServiceParams{
		Admins:         repo,
		Sessions:       sessions,
		JWTConfig:      testJWT,
		PasswordConfig: testPassword,
		Now:            func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo
}

func TestRegisterThenLogin(t *testing.T) {
	sessions := &fakeSessions{}
	svc, repo := buildTestService(t, sessions)
	ctx := context.Background()

	admin, err := svc.Register(ctx, RegisterRequest{Email: " Chef@AfriFood.bj ", Password: "motdepasse", DisplayName: "Chef"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if admin.Email != "chef@afrifood.bj" {
		t.Fatalf("expected normalized email, got %q", admin.Email)
	}

	resp, err := svc.Login(ctx, LoginRequest{Email: "chef@afrifood.bj", Password: "motdepasse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.AdminID != admin.ID {
		t.Fatalf("expected admin %s in token, got %s", admin.ID, claims.AdminID)
	}
	if sessions.opened[claims.ID] != admin.ID.String() {
		t.Fatalf("expected session opened for jti %s", claims.ID)
	}
	if !resp.ExpiresAt.Equal(testNow.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry %s", resp.ExpiresAt)
	}

	stored, err := repo.FindByEmail(ctx, "chef@afrifood.bj")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if stored.LastLoginAt == nil || !stored.LastLoginAt.Equal(testNow) {
		t.Fatalf("expected last login recorded, got %v", stored.LastLoginAt)
	}
}

func TestLoginFailuresShareMessage(t *testing.T) {
	svc, _ := buildTestService(t, &fakeSessions{})
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterRequest{Email: "chef@afrifood.bj", Password: "motdepasse"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for name, req := range map[string]LoginRequest{
		"wrong password": {Email: "chef@afrifood.bj", Password: "nope"},
		"unknown email":  {Email: "ghost@afrifood.bj", Password: "motdepasse"},
		"empty":          {},
	} {
		_, err := svc.Login(ctx, req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("%s: expected unauthorized, got %v", name, err)
		}
		if typed.Message() != InvalidCredentialsMessage {
			t.Fatalf("%s: unexpected message %q", name, typed.Message())
		}
	}
}

func TestLoginSessionFailure(t *testing.T) {
	sessions := &fakeSessions{}
	svc, _ := buildTestService(t, sessions)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterRequest{Email: "chef@afrifood.bj", Password: "motdepasse"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	sessions.openErr = errors.New("redis down")
	_, err := svc.Login(ctx, LoginRequest{Email: "chef@afrifood.bj", Password: "motdepasse"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestRegisterRejectsDuplicatesAndShortPasswords(t *testing.T) {
	svc, _ := buildTestService(t, &fakeSessions{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Email: "chef@afrifood.bj", Password: "court"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterRequest{Email: "chef@afrifood.bj", Password: "motdepasse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterRequest{Email: "CHEF@afrifood.bj", Password: "motdepasse"}); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &fakeSessions{}
	svc, _ := buildTestService(t, sessions)

	if err := svc.Logout(context.Background(), "jti-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-1" {
		t.Fatalf("expected revoke of jti-1, got %v", sessions.revoked)
	}
	if err := svc.Logout(context.Background(), ""); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for empty session, got %v", err)
	}
}
