package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/refriproject/refri-backend/internal/users"
	pkgAuth "github.com/refriproject/refri-backend/pkg/auth"
	"github.com/refriproject/refri-backend/pkg/auth/session"
	"github.com/refriproject/refri-backend/pkg/config"
	"github.com/refriproject/refri-backend/pkg/db/models"
	pkgerrors "github.com/refriproject/refri-backend/pkg/errors"
	"github.com/refriproject/refri-backend/pkg/security"
	"gorm.io/gorm"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "refri",
	ExpirationMinutes: 30,
}

type stubUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
	created []*models.User
	err     error
}

func newStubUserRepo(existing ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
	for _, user := range existing {
		repo.byEmail[user.Email] = user
		repo.byID[user.ID] = user
	}
	return repo
}

func (r *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if _, exists := r.byEmail[dto.Email]; exists {
		return nil, fmt.Errorf(`duplicate key value violates unique constraint "users_email_key"`)
	}
	user := dto.ToModel()
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	r.created = append(r.created, user)
	return user, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	user, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type stubSessionManager struct {
	sessions  map[string]string
	generated int
	revoked   []string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{sessions: map[string]string{}}
}

func (m *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	m.generated++
	token := fmt.Sprintf("refresh-%d", m.generated)
	m.sessions[accessID] = token
	return token, nil
}

func (m *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := m.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(m.sessions, oldAccessID)
	newAccessID := session.NewAccessID()
	m.generated++
	token := fmt.Sprintf("refresh-%d", m.generated)
	m.sessions[newAccessID] = token
	return newAccessID, token, nil
}

func (m *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	m.revoked = append(m.revoked, accessID)
	delete(m.sessions, accessID)
	return nil
}

type recordingListener struct {
	started int
	ended   int
}

func (l *recordingListener) SessionStarted(context.Context) { l.started++ }
func (l *recordingListener) SessionEnded()                  { l.ended++ }

func buildTestService(t *testing.T, repo *stubUserRepo) (Service, *stubSessionManager, *recordingListener) {
	t.Helper()
	sessions := newStubSessionManager()
	listener := &recordingListener{}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
		Listener:       listener,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions, listener
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestServiceRegisterOpensSession(t *testing.T) {
	repo := newStubUserRepo()
	svc, _, listener := buildTestService(t, repo)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Ana@Example.com",
		Username: "ana",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User.Email != "ana@example.com" {
		t.Fatalf("expected lowercased email, got %q", resp.User.Email)
	}
	if listener.started != 1 {
		t.Fatalf("expected session-start notification, got %d", listener.started)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Username != "ana" {
		t.Fatalf("expected username claim, got %q", claims.Username)
	}
}

func TestServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc, _, _ := buildTestService(t, repo)
	ctx := context.Background()

	req := RegisterRequest{Email: "ana@example.com", Username: "ana", Password: "correct-horse"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestServiceRegisterWeakPassword(t *testing.T) {
	svc, _, _ := buildTestService(t, newStubUserRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "ana@example.com",
		Username: "ana",
		Password: "short",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceLoginSuccess(t *testing.T) {
	password := "correct-horse"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ana@example.com",
		Username:     "ana",
		PasswordHash: mustHashPassword(t, password),
	}
	svc, _, listener := buildTestService(t, newStubUserRepo(user))

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Ana@Example.com", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.ID != user.ID {
		t.Fatalf("unexpected user %v", resp.User.ID)
	}
	if listener.started != 1 {
		t.Fatalf("expected session-start notification, got %d", listener.started)
	}
}

func TestServiceLoginBadPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ana@example.com",
		Username:     "ana",
		PasswordHash: mustHashPassword(t, "correct-horse"),
	}
	svc, _, listener := buildTestService(t, newStubUserRepo(user))

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if listener.started != 0 {
		t.Fatal("listener must not fire on failed login")
	}
}

func TestServiceLoginUnknownEmail(t *testing.T) {
	svc, _, _ := buildTestService(t, newStubUserRepo())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	password := "correct-horse"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ana@example.com",
		Username:     "ana",
		PasswordHash: mustHashPassword(t, password),
	}
	svc, sessions, _ := buildTestService(t, newStubUserRepo(user))
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("expected a rotated refresh token")
	}
	if refreshed.User.ID != user.ID {
		t.Fatalf("unexpected user %v", refreshed.User.ID)
	}

	// The old pair is dead after rotation.
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on replay, got %v", err)
	}
	if len(sessions.sessions) != 1 {
		t.Fatalf("expected exactly one live session, got %d", len(sessions.sessions))
	}
}

func TestServiceRefreshRejectsForgedToken(t *testing.T) {
	svc, _, _ := buildTestService(t, newStubUserRepo())

	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "whatever",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLogout(t *testing.T) {
	password := "correct-horse"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ana@example.com",
		Username:     "ana",
		PasswordHash: mustHashPassword(t, password),
	}
	svc, sessions, listener := buildTestService(t, newStubUserRepo(user))
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, login.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if err := svc.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if listener.ended != 1 {
		t.Fatalf("expected session-end notification, got %d", listener.ended)
	}
	if len(sessions.sessions) != 0 {
		t.Fatal("expected session to be revoked")
	}
}

func TestServiceRegisterDependencyFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = errors.New("connection refused")
	svc, _, listener := buildTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "ana@example.com",
		Username: "ana",
		Password: "correct-horse",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if listener.started != 0 {
		t.Fatal("listener must not fire on failed register")
	}
}
