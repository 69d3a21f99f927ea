package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/tubetip/tubetip/internal/apperror"
	"github.com/tubetip/tubetip/internal/model"
)

// mockBackend is an in-memory session.Backend. It can be primed with an
// identity and made to fail on demand.
type mockBackend struct {
	identity   *model.User
	currentErr error
	loginErr   error
	logoutErr  error

	logoutCalls int
}

func (m *mockBackend) CurrentUser(_ context.Context) (*model.User, error) {
	if m.currentErr != nil {
		return nil, m.currentErr
	}
	if m.identity == nil {
		return nil, apperror.AuthFailed("no credential")
	}
	u := *m.identity
	return &u, nil
}

func (m *mockBackend) Login(_ context.Context, creds model.Credentials) (*model.User, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	u := *m.identity
	u.Email = creds.Email
	return &u, nil
}

func (m *mockBackend) Logout(_ context.Context) error {
	m.logoutCalls++
	return m.logoutErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func alice() *model.User {
	return &model.User{ID: 7, Username: "alice", Email: "alice@example.com", HasProfile: true}
}

func TestNewStore_StartsLoading(t *testing.T) {
	s := NewStore(&mockBackend{}, testLogger())

	snap := s.Snapshot()
	if !snap.LoadingUser {
		t.Error("new store should be in the loading state")
	}
	if s.IsAuthenticated() {
		t.Error("a loading store must not report authenticated")
	}
}

func TestInitialize_Success(t *testing.T) {
	s := NewStore(&mockBackend{identity: alice()}, testLogger())

	s.Initialize(context.Background())

	snap := s.Snapshot()
	if snap.LoadingUser {
		t.Error("Initialize did not resolve loading")
	}
	if snap.User == nil || snap.User.Username != "alice" {
		t.Fatalf("Snapshot().User = %+v, want alice", snap.User)
	}
	if !s.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after successful Initialize")
	}
}

func TestInitialize_Unauthenticated(t *testing.T) {
	s := NewStore(&mockBackend{}, testLogger())

	s.Initialize(context.Background())

	snap := s.Snapshot()
	if snap.LoadingUser {
		t.Error("Initialize did not resolve loading")
	}
	if snap.User != nil {
		t.Errorf("Snapshot().User = %+v, want nil", snap.User)
	}
}

// A failed re-initialization with a user still set locally must also run
// logout side effects, so no stale credential survives on either side.
func TestInitialize_ExpiredCredentialTriggersLogout(t *testing.T) {
	backend := &mockBackend{identity: alice()}
	s := NewStore(backend, testLogger())
	s.Initialize(context.Background())

	backend.currentErr = apperror.AuthFailed("expired")
	s.Initialize(context.Background())

	if s.CurrentUser() != nil {
		t.Error("user survived a failed re-initialization")
	}
	if backend.logoutCalls != 1 {
		t.Errorf("logoutCalls = %d, want 1", backend.logoutCalls)
	}
}

func TestInitialize_FirstFailureDoesNotLogout(t *testing.T) {
	backend := &mockBackend{currentErr: apperror.AuthFailed("no credential")}
	s := NewStore(backend, testLogger())

	s.Initialize(context.Background())

	if backend.logoutCalls != 0 {
		t.Errorf("logoutCalls = %d, want 0 — nothing to clean up on a fresh session", backend.logoutCalls)
	}
}

func TestLogin_Atomic(t *testing.T) {
	backend := &mockBackend{identity: alice()}
	s := NewStore(backend, testLogger())
	s.Initialize(context.Background())

	backend.loginErr = errors.New("backend down")
	if _, err := s.Login(context.Background(), model.Credentials{Email: "x@y.z"}); err == nil {
		t.Fatal("Login() should propagate backend error")
	}

	after := s.Snapshot()
	if after.User == nil || after.User.ID != 7 {
		t.Errorf("failed Login mutated the session: user = %+v, want alice untouched", after.User)
	}
}

func TestLogin_InstallsUser(t *testing.T) {
	s := NewStore(&mockBackend{identity: alice()}, testLogger())

	user, err := s.Login(context.Background(), model.Credentials{Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Login() user = %q", user.Username)
	}
	if !s.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after Login — login must also resolve loading")
	}
}

func TestLogout_ClearsLocallyEvenWhenBackendFails(t *testing.T) {
	backend := &mockBackend{identity: alice(), logoutErr: errors.New("backend down")}
	s := NewStore(backend, testLogger())
	s.Initialize(context.Background())

	err := s.Logout(context.Background())
	if err == nil {
		t.Error("Logout() should surface the backend error")
	}
	if s.CurrentUser() != nil {
		t.Error("Logout() left the local user set — it must clear unconditionally")
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := NewStore(&mockBackend{identity: alice()}, testLogger())
	s.Initialize(context.Background())

	snap := s.Snapshot()
	snap.User.Username = "mallory"

	if s.CurrentUser().Username != "alice" {
		t.Error("mutating a snapshot leaked into the store")
	}
}
