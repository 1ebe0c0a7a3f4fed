package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/toomburg/handlers"
	"github.com/ray-remotestate/toomburg/metrics"
	"github.com/ray-remotestate/toomburg/middlewares"
	"github.com/ray-remotestate/toomburg/services"
	"github.com/ray-remotestate/toomburg/services/servicetest"
	"github.com/ray-remotestate/toomburg/sessions"
)

const (
	adminEmail    = "owner@toomburg.test"
	adminPassword = "#Admin123"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testApp struct {
	server *Server
	repo   *servicetest.MemoryRepository
	clock  *fakeClock
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	repo := servicetest.NewMemoryRepository()
	clock := &fakeClock{now: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	admin, err := services.NewAdministrativeIdentity(adminEmail, "", adminPassword)
	require.NoError(t, err)

	store := sessions.NewMemoryStore(sessions.DefaultTTL, clock.Now)
	sm := middlewares.NewSessionManager(store, []byte("test-secret"), clock.Now, false)
	ledger := services.NewLedger(repo)
	verifier := services.NewCredentialVerifier(repo, admin)
	m := metrics.NewCollector(prometheus.NewRegistry())

	h, err := handlers.New(handlers.Deps{
		Sessions:  sm,
		Verifier:  verifier,
		Directory: services.NewUserDirectory(repo, verifier),
		Ledger:    ledger,
		Checkout:  services.NewCheckout(ledger),
		Admin:     services.NewAdminViewAggregator(repo),
		Metrics:   m,
	})
	require.NoError(t, err)

	limiter := middlewares.NewRateLimiter(1000, time.Minute)
	t.Cleanup(limiter.Stop)

	return &testApp{
		server: SetupRoutes(h, sm, limiter, m),
		repo:   repo,
		clock:  clock,
	}
}

// browser keeps the session cookie between requests and never follows redirects.
type browser struct {
	t      *testing.T
	app    *testApp
	cookie *http.Cookie
}

func (a *testApp) browser(t *testing.T) *browser {
	return &browser{t: t, app: a}
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}

	rec := httptest.NewRecorder()
	b.app.server.Router.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name != middlewares.SessionCookieName {
			continue
		}
		if c.MaxAge < 0 || c.Value == "" {
			b.cookie = nil
		} else {
			b.cookie = c
		}
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return b.do(http.MethodPost, path, form)
}

func (b *browser) register(email, firstName, password string) {
	b.t.Helper()
	rec := b.post("/register", url.Values{
		"email":      {email},
		"first_name": {firstName},
		"last_name":  {"Tester"},
		"password":   {password},
		"confirm":    {password},
	})
	requireRedirect(b.t, rec, http.StatusSeeOther, "/home")
}

func (b *browser) login(email, password string) *httptest.ResponseRecorder {
	return b.post("/", url.Values{"email": {email}, "password": {password}})
}

func requireRedirect(t *testing.T, rec *httptest.ResponseRecorder, code int, location string) {
	t.Helper()
	require.Equal(t, code, rec.Code, rec.Body.String())
	require.Equal(t, location, rec.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	rec := app.browser(t).get("/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"alive": true}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.login("nobody@toomburg.test", "pw")

	rec := b.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "toomburg_logins_total")
}

func TestRegister_ShowsSuccessOnce(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("Ana@Example.com", "Ana", "pw1")

	rec := b.get("/home")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registration successful!")
	assert.Contains(t, rec.Body.String(), "Welcome, Ana")

	rec = b.get("/home")
	assert.NotContains(t, rec.Body.String(), "Registration successful!")
	assert.Contains(t, rec.Body.String(), "Welcome, Ana")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	rec := b.post("/register", url.Values{
		"email":    {"ana@example.com"},
		"password": {"a"},
		"confirm":  {"b"},
	})
	requireRedirect(t, rec, http.StatusSeeOther, "/register")
	assert.Contains(t, b.get("/register").Body.String(), "Passwords do not match")

	exists, err := app.repo.EmailExists(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.browser(t).register("ana@example.com", "Ana", "pw1")

	b := app.browser(t)
	rec := b.post("/register", url.Values{
		"email":      {" ANA@example.com "},
		"first_name": {"Other"},
		"password":   {"pw2"},
		"confirm":    {"pw2"},
	})
	requireRedirect(t, rec, http.StatusSeeOther, "/")
	assert.Contains(t, b.get("/").Body.String(), "Email already exists. Please log in")
}

func TestLogin_Outcomes(t *testing.T) {
	app := newTestApp(t)
	app.browser(t).register("ana@example.com", "Ana", "pw1")

	t.Run("unknown email", func(t *testing.T) {
		b := app.browser(t)
		requireRedirect(t, b.login("who@example.com", "x"), http.StatusSeeOther, "/register")
		assert.Contains(t, b.get("/register").Body.String(), "Email not found. Please register")
	})

	t.Run("wrong password", func(t *testing.T) {
		b := app.browser(t)
		requireRedirect(t, b.login("ana@example.com", "nope"), http.StatusSeeOther, "/")
		assert.Contains(t, b.get("/").Body.String(), "Incorrect password")
	})

	t.Run("wrong admin password", func(t *testing.T) {
		b := app.browser(t)
		requireRedirect(t, b.login(adminEmail, "nope"), http.StatusSeeOther, "/")
		assert.Contains(t, b.get("/").Body.String(), "Incorrect admin password")
	})

	t.Run("customer", func(t *testing.T) {
		b := app.browser(t)
		requireRedirect(t, b.login("ana@example.com", "pw1"), http.StatusSeeOther, "/home")
		assert.Contains(t, b.get("/home").Body.String(), "Welcome, Ana")
	})
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ana@example.com", "Ana", "pw1")
	before := b.cookie.Value

	requireRedirect(t, b.login("ana@example.com", "pw1"), http.StatusSeeOther, "/home")
	require.NotNil(t, b.cookie)
	assert.NotEqual(t, before, b.cookie.Value)

	stale := &browser{t: t, app: app, cookie: &http.Cookie{Name: middlewares.SessionCookieName, Value: before}}
	requireRedirect(t, stale.get("/reserve"), http.StatusSeeOther, "/")
}

func TestCheckout_EndToEnd(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ana@example.com", "Ana", "pw1")

	order := b.get("/order")
	require.Equal(t, http.StatusOK, order.Code)
	assert.NotContains(t, order.Body.String(), "10% off")

	rec := b.post("/confirm_order", url.Values{"items": {"Burger,10.00", "Fries,3.50"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Total: $13.50")

	rec = b.post("/process_payment", url.Values{"card_number": {"1234 5678 9012 345"}})
	requireRedirect(t, rec, http.StatusSeeOther, "/confirm_order")

	rec = b.get("/confirm_order")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid card number (must be 16 digits)")
	assert.Contains(t, rec.Body.String(), "Total: $13.50")
	assert.Empty(t, app.repo.OrdersFor(1))

	rec = b.post("/process_payment", url.Values{"card_number": {"1234 5678 9012 3456"}})
	requireRedirect(t, rec, http.StatusSeeOther, "/home")
	assert.Contains(t, b.get("/home").Body.String(), "Thank you for your trust! Your order is confirmed.")

	orders := app.repo.OrdersFor(1)
	require.Len(t, orders, 2)
	assert.Equal(t, "Burger", orders[0].Item)
	assert.Equal(t, "Fries", orders[1].Item)

	// pending order is gone and the customer now gets the discount
	requireRedirect(t, b.get("/confirm_order"), http.StatusSeeOther, "/order")
	assert.Contains(t, b.get("/order").Body.String(), "10% off")

	rec = b.post("/confirm_order", url.Values{"items": {"Burger,10.00"}})
	assert.Contains(t, rec.Body.String(), "Total: $9.00")
}

func TestCheckout_DiscountOnLoginWithHistory(t *testing.T) {
	app := newTestApp(t)
	_, err := app.repo.CreateUser(context.Background(), "ana@example.com", "Ana", "T", mustHash(t, "pw1"))
	require.NoError(t, err)
	_, err = app.repo.CreateReservation(context.Background(), 1, "2026-10-20", "19:00", 2)
	require.NoError(t, err)

	b := app.browser(t)
	requireRedirect(t, b.login("ana@example.com", "pw1"), http.StatusSeeOther, "/home")

	rec := b.post("/confirm_order", url.Values{"items": {"Soup,7.005"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Total: $6.30")
}

func TestOrderPost_PreservesMethod(t *testing.T) {
	app := newTestApp(t)
	rec := app.browser(t).post("/order", url.Values{"items": {"Burger,10.00"}})
	requireRedirect(t, rec, http.StatusTemporaryRedirect, "/confirm_order")
}

func TestConfirmOrder_RequiresLogin(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	rec := b.post("/confirm_order", url.Values{"items": {"Burger,10.00"}})
	requireRedirect(t, rec, http.StatusSeeOther, "/")
	assert.Contains(t, b.get("/").Body.String(), "Please login first")
}

func TestConfirmOrder_RejectsBadSelections(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ana@example.com", "Ana", "pw1")

	requireRedirect(t, b.post("/confirm_order", nil), http.StatusSeeOther, "/order")
	assert.Contains(t, b.get("/order").Body.String(), "No items selected!")

	rec := b.post("/confirm_order", url.Values{"items": {"Burger"}})
	requireRedirect(t, rec, http.StatusSeeOther, "/order")
	assert.Contains(t, b.get("/order").Body.String(), "Invalid item selection")
}

func TestProcessPayment_NoPendingOrder(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ana@example.com", "Ana", "pw1")

	rec := b.post("/process_payment", url.Values{"card_number": {"1234567890123456"}})
	requireRedirect(t, rec, http.StatusSeeOther, "/home")
	assert.Contains(t, b.get("/home").Body.String(), "No order to process")
}

func TestReserve(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ana@example.com", "Ana", "pw1")

	require.Equal(t, http.StatusOK, b.get("/reserve").Code)

	rec := b.post("/reserve", url.Values{"date": {"2026-10-20"}, "time": {"19:00"}, "guests": {"many"}})
	requireRedirect(t, rec, http.StatusSeeOther, "/reserve")
	assert.Contains(t, b.get("/reserve").Body.String(), "Please enter a valid number of guests")

	rec = b.post("/reserve", url.Values{"date": {"2026-10-20"}, "time": {"19:00"}, "guests": {"4"}})
	requireRedirect(t, rec, http.StatusSeeOther, "/home")
	assert.Contains(t, b.get("/home").Body.String(), "Reservation successful!")

	res := app.repo.ReservationsFor(1)
	require.Len(t, res, 1)
	assert.Equal(t, 4, res[0].Guests)
}

func TestReserve_GuestsOutOfRange(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ana@example.com", "Ana", "pw1")

	rec := b.post("/reserve", url.Values{"date": {"2026-10-20"}, "time": {"19:00"}, "guests": {"3000000000"}})
	requireRedirect(t, rec, http.StatusSeeOther, "/reserve")
	assert.Contains(t, b.get("/reserve").Body.String(), "Please enter a valid number of guests")
	assert.Empty(t, app.repo.ReservationsFor(1))
}

func TestConfirmOrder_RejectsHugePrice(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ana@example.com", "Ana", "pw1")

	rec := b.post("/confirm_order", url.Values{"items": {"Burger,1e8000000"}})
	requireRedirect(t, rec, http.StatusSeeOther, "/order")
	assert.Contains(t, b.get("/order").Body.String(), "Invalid item selection")
}

func TestReserve_AnonymousDenied(t *testing.T) {
	app := newTestApp(t)
	requireRedirect(t, app.browser(t).get("/reserve"), http.StatusSeeOther, "/")
	assert.Empty(t, app.repo.ReservationsFor(1))
}

func TestAdminDashboard(t *testing.T) {
	app := newTestApp(t)
	cust := app.browser(t)
	cust.register("ana@example.com", "Ana", "pw1")
	cust.post("/reserve", url.Values{"date": {"2026-10-20"}, "time": {"19:00"}, "guests": {"2"}})

	admin := app.browser(t)
	requireRedirect(t, admin.login(adminEmail, adminPassword), http.StatusSeeOther, "/home")

	rec := admin.get("/admin_dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ana@example.com")
	assert.Contains(t, rec.Body.String(), "2026-10-20")

	// admins cannot place orders or reservations
	requireRedirect(t, admin.get("/reserve"), http.StatusSeeOther, "/")
}

func TestAdminDashboard_DeniedWithoutReads(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	// a customer who calls themselves Admin is still a customer
	b.register("ana@example.com", "Admin", "pw1")
	reads := app.repo.Reads

	requireRedirect(t, b.get("/admin_dashboard"), http.StatusSeeOther, "/home")
	assert.Contains(t, b.get("/home").Body.String(), "Access denied")
	assert.Equal(t, reads, app.repo.Reads)

	anon := app.browser(t)
	requireRedirect(t, anon.get("/admin_dashboard"), http.StatusSeeOther, "/home")
	assert.Equal(t, reads, app.repo.Reads)
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ana@example.com", "Ana", "pw1")
	old := b.cookie

	requireRedirect(t, b.post("/logout", nil), http.StatusSeeOther, "/")
	assert.Nil(t, b.cookie)

	replay := &browser{t: t, app: app, cookie: old}
	requireRedirect(t, replay.get("/reserve"), http.StatusSeeOther, "/")
}

func TestSessionExpiresAfterWindow(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ana@example.com", "Ana", "pw1")

	app.clock.Advance(4 * time.Minute)
	require.Equal(t, http.StatusOK, b.get("/reserve").Code)

	// activity does not extend the window
	app.clock.Advance(time.Minute)
	requireRedirect(t, b.get("/reserve"), http.StatusSeeOther, "/")
	assert.Contains(t, b.get("/").Body.String(), "Please login first")
}

func TestUnknownMethodNotRouted(t *testing.T) {
	app := newTestApp(t)
	rec := app.browser(t).get("/logout")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestShutdownBeforeRun(t *testing.T) {
	app := newTestApp(t)
	assert.NoError(t, app.server.Shutdown(time.Second))
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	v := services.NewCredentialVerifier(nil, services.AdministrativeIdentity{})
	hash, err := v.Hash(password)
	require.NoError(t, err)
	return hash
}
