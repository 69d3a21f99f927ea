package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tubetip/tubetip/internal/auth"
)

func ticketCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.TicketCookie {
			return c
		}
	}
	return nil
}

func TestLoginPage(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/login"`)
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials, no profile yet", func(t *testing.T) {
		app := newTestApp(t)
		app.stub.user.HasProfile = false

		rec := app.do(formRequest("/login", map[string]string{
			"email": stubEmail, "password": stubPass,
		}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/profile/setup", rec.Header().Get("Location"))

		cookie := ticketCookie(rec)
		if assert.NotNil(t, cookie, "login should set a ticket cookie") {
			assert.True(t, cookie.HttpOnly)
			sessionID, err := app.tickets.Validate(cookie.Value)
			assert.NoError(t, err)
			assert.NotEmpty(t, sessionID)
		}
	})

	t.Run("fully set up account lands on own page", func(t *testing.T) {
		app := newTestApp(t)
		app.stub.user.HasProfile = true
		app.stub.user.IsBankConnected = true

		rec := app.do(formRequest("/login", map[string]string{
			"email": stubEmail, "password": stubPass,
		}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/alice", rec.Header().Get("Location"))
	})

	t.Run("wrong password re-renders the form", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(formRequest("/login", map[string]string{
			"email": stubEmail, "password": "wrong",
		}))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "incorrect email or password")
		assert.Nil(t, ticketCookie(rec))
	})

	t.Run("empty fields never reach the backend", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(formRequest("/login", map[string]string{"email": "", "password": ""}))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "email is required")
	})
}

func TestLoginPage_AlreadyAuthenticated(t *testing.T) {
	// A logged-in creator visiting /login gets forwarded to wherever
	// their funnel stands, not the form.
	app := newTestApp(t)
	app.stub.user.HasProfile = true
	app.stub.user.IsBankConnected = true
	cookie := app.loginAs(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookie)
	rec := app.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/alice", rec.Header().Get("Location"))
}

func TestRegister(t *testing.T) {
	t.Run("success lands on profile setup", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(formRequest("/register", map[string]string{
			"username":         "bob",
			"email":            "bob@example.com",
			"password":         "correcthorse",
			"confirm_password": "correcthorse",
		}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/profile/setup", rec.Header().Get("Location"))
		assert.NotNil(t, ticketCookie(rec))
	})

	t.Run("password mismatch caught locally", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(formRequest("/register", map[string]string{
			"username":         "bob",
			"email":            "bob@example.com",
			"password":         "one",
			"confirm_password": "two",
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "passwords do not match")
	})

	t.Run("taken username re-renders with the backend message", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(formRequest("/register", map[string]string{
			"username":         "taken",
			"email":            "bob@example.com",
			"password":         "correcthorse",
			"confirm_password": "correcthorse",
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "username already exists")
		assert.Nil(t, ticketCookie(rec))
	})
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t)

	req := formRequest("/logout", nil)
	req.AddCookie(cookie)
	rec := app.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cleared := ticketCookie(rec)
	if assert.NotNil(t, cleared) {
		assert.Negative(t, cleared.MaxAge, "logout should expire the ticket cookie")
	}

	// The session row is gone: replaying the old ticket is anonymous.
	req = httptest.NewRequest(http.MethodGet, "/profile/setup", nil)
	req.AddCookie(cookie)
	rec = app.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestPrivatePagesRequireLogin(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/profile/setup",
		"/profile/setup/pictures",
		"/bank/connect",
	} {
		rec := app.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}
