package handler_test

// TEST HARNESS:
// These tests exercise the full request path — session middleware, access
// gates, handlers, templates — against a stub TubeTip backend. The stub
// holds one creator account and one public profile, which covers every
// flow the gateway has.

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tubetip/tubetip/internal/access"
	"github.com/tubetip/tubetip/internal/api"
	"github.com/tubetip/tubetip/internal/auth"
	"github.com/tubetip/tubetip/internal/handler"
	"github.com/tubetip/tubetip/internal/model"
	"github.com/tubetip/tubetip/internal/repository/sqlite"
)

const (
	stubAccess  = "stub-access"
	stubRefresh = "stub-refresh"
	stubEmail   = "alice@example.com"
	stubPass    = "hunter2hunter2"
)

// backendStub emulates the TubeTip REST backend.
type backendStub struct {
	user    model.User
	profile model.Profile
	tips    []model.Tip

	checkoutURL string
	connectURL  string
}

func newBackendStub() *backendStub {
	tips := make([]model.Tip, 20)
	for i := range tips {
		tips[i] = model.Tip{
			ID:        int64(i + 1),
			Amount:    500,
			Name:      "supporter",
			CreatedAt: time.Now(),
		}
	}
	tips[0].IsPrivate = true
	return &backendStub{
		user: model.User{ID: 1, Username: "alice", Email: stubEmail},
		profile: model.Profile{
			ID:              7,
			CreatorID:       1,
			DisplayName:     "Alice",
			Bio:             "I make videos",
			Currency:        "GBP",
			IsBankConnected: true,
			Tips:            tips[:15],
			NumberOfTips:    20,
		},
		tips:        tips,
		checkoutURL: "https://checkout.stripe.test/session/abc",
		connectURL:  "https://connect.stripe.test/onboard/xyz",
	}
}

func (b *backendStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostFormValue("username") != stubEmail || r.PostFormValue("password") != stubPass {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "incorrect credentials"})
			return
		}
		b.writeLogin(w)
	})

	mux.HandleFunc("POST /creator/create", func(w http.ResponseWriter, r *http.Request) {
		var reg struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		}
		json.NewDecoder(r.Body).Decode(&reg)
		if reg.Username == "taken" {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"message": "username already exists"})
			return
		}
		b.user = model.User{ID: 2, Username: reg.Username, Email: reg.Email}
		b.writeLogin(w)
	})

	mux.HandleFunc("GET /creator/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+stubAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(b.user)
	})

	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(struct{}{})
	})

	mux.HandleFunc("POST /creator/profile/create", func(w http.ResponseWriter, r *http.Request) {
		b.user.HasProfile = true
		json.NewEncoder(w).Encode(b.profile)
	})

	mux.HandleFunc("PATCH /creator/profile/update", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(b.profile)
	})

	mux.HandleFunc("GET /creator/profile/username/{username}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("username") != b.user.Username {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "profile not found"})
			return
		}
		json.NewEncoder(w).Encode(b.profile)
	})

	mux.HandleFunc("GET /tips/{id}", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		end := offset + limit
		if offset > len(b.tips) {
			offset = len(b.tips)
		}
		if end > len(b.tips) {
			end = len(b.tips)
		}
		json.NewEncoder(w).Encode(map[string]any{"tips": b.tips[offset:end]})
	})

	mux.HandleFunc("POST /stripe/checkout", func(w http.ResponseWriter, r *http.Request) {
		var req api.CheckoutRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Amount <= 0 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]any{
				"errors": []map[string]string{{"field": "payment_amount", "message": "must be positive"}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"url": b.checkoutURL})
	})

	mux.HandleFunc("POST /stripe/connect", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"url": b.connectURL})
	})

	return mux
}

func (b *backendStub) writeLogin(w http.ResponseWriter) {
	json.NewEncoder(w).Encode(map[string]any{
		"id":                b.user.ID,
		"username":          b.user.Username,
		"has_profile":       b.user.HasProfile,
		"is_bank_connected": b.user.IsBankConnected,
		"access_token":      stubAccess,
		"refresh_token":     stubRefresh,
	})
}

// testApp wires the gateway the way server.setupRoutes does, against the
// stub backend and an in-memory session store.
type testApp struct {
	router  *chi.Mux
	stub    *backendStub
	tickets *auth.TicketService
	db      *sqlite.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stub := newBackendStub()
	backendSrv := httptest.NewServer(stub.handler())
	t.Cleanup(backendSrv.Close)

	client, err := api.New(backendSrv.URL, logger)
	if err != nil {
		t.Fatalf("api.New() error = %v", err)
	}

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tickets, err := auth.NewTicketService("test-secret-key-long-enough")
	if err != nil {
		t.Fatalf("NewTicketService() error = %v", err)
	}

	renderer, err := handler.NewRenderer("../../web/templates", logger)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	pagesH := handler.NewPageHandler(renderer, logger)
	authH := handler.NewAuthHandler(renderer, tickets, logger)
	onboardingH := handler.NewOnboardingHandler(renderer, client, logger)
	profileH := handler.NewProfileHandler(renderer, client, logger)

	guard := func(groups ...access.Group) func(http.Handler) http.Handler {
		return access.Middleware(auth.SnapshotFromRequest, groups...)
	}

	router := chi.NewRouter()
	router.Use(auth.Sessions(tickets, client, db, logger))

	router.Get("/", pagesH.ShowLanding)
	router.NotFound(pagesH.NotFound)

	router.Group(func(r chi.Router) {
		r.Use(guard(access.UnauthenticatedOnly))
		r.Get(access.PathLogin, authH.ShowLogin)
		r.Post(access.PathLogin, authH.HandleLogin)
		r.Get(access.PathRegister, authH.ShowRegister)
		r.Post(access.PathRegister, authH.HandleRegister)
	})

	router.Post("/logout", authH.HandleLogout)

	router.Group(func(r chi.Router) {
		r.Use(guard(access.PrivateAny, access.ProfileSetupGate))
		r.Get(access.PathProfileSetup, onboardingH.ShowSetup)
		r.Post(access.PathProfileSetup, onboardingH.HandleSetup)
	})

	router.Group(func(r chi.Router) {
		r.Use(guard(access.PrivateAny))
		r.Get(access.PathSetupPictures, onboardingH.ShowPictures)
		r.Post(access.PathSetupPictures, onboardingH.HandlePictures)
		r.Post(access.PathSetupPictures+"/skip", onboardingH.HandlePicturesSkip)
		r.Get(access.PathSetupConfirmation, onboardingH.ShowConfirmation)
		r.Get(access.PathConnectSuccess, onboardingH.ShowConnectSuccess)
		r.Post(access.PathConnectBank+"/later", onboardingH.HandleConnectLater)
	})

	router.Group(func(r chi.Router) {
		r.Use(guard(access.PrivateAny, access.ConnectBankGate))
		r.Get(access.PathConnectBank, onboardingH.ShowConnectBank)
		r.Post(access.PathConnectBank, onboardingH.HandleConnectBank)
	})

	router.Get("/checkout/success", profileH.ShowCheckoutSuccess)
	router.Get("/api/profiles/{username}/tips", profileH.HandleTipsPage)
	router.Get("/{username}", profileH.ShowProfile)
	router.Post("/{username}/tip", profileH.HandleTip)

	return &testApp{router: router, stub: stub, tickets: tickets, db: db}
}

// do runs one request through the router.
func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// loginAs creates a gateway session directly and returns a valid ticket
// cookie, skipping the login form.
func (a *testApp) loginAs(t *testing.T) *http.Cookie {
	t.Helper()

	rec := &model.GatewaySession{AccessToken: stubAccess, RefreshToken: stubRefresh}
	if err := a.db.Create(t.Context(), rec); err != nil {
		t.Fatalf("creating session row: %v", err)
	}
	ticket, err := a.tickets.Issue(rec.ID)
	if err != nil {
		t.Fatalf("issuing ticket: %v", err)
	}
	return &http.Cookie{Name: auth.TicketCookie, Value: ticket}
}

func formRequest(path string, form map[string]string) *http.Request {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
