package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smilecare/internal/database"
	"smilecare/internal/models"
	"smilecare/internal/pipeline"
)

type fakeNotifier struct {
	err   error
	calls int
}

func (f *fakeNotifier) Notify(_ context.Context, _ *models.Booking) error {
	f.calls++
	return f.err
}

type fakeScheduler struct {
	err   error
	calls int
}

func (f *fakeScheduler) Schedule(_ context.Context, b *models.Booking) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	_, _, err := b.EventWindow(time.UTC)
	return err
}

type fixture struct {
	server    *Server
	handler   http.Handler
	db        *database.DB
	notifier  *fakeNotifier
	scheduler *fakeScheduler
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zerolog.New(io.Discard)
	notifier := &fakeNotifier{}
	scheduler := &fakeScheduler{}
	p := pipeline.New(db, notifier, scheduler, time.Second, &logger)
	srv := NewServer(db, p, opts, &logger)

	return &fixture{
		server:    srv,
		handler:   srv.Handler(),
		db:        db,
		notifier:  notifier,
		scheduler: scheduler,
	}
}

func bookingForm() url.Values {
	return url.Values{
		"name":  {"Jane Doe"},
		"email": {"jane@example.com"},
		"phone": {"555-0100"},
		"date":  {"2024-06-01"},
		"time":  {"14:00"},
	}
}

func postBook(h http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/book", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestBookSuccessRedirectsToThankYou(t *testing.T) {
	fx := newFixture(t, Options{})

	w := postBook(fx.handler, bookingForm())

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/thankyou.html", w.Header().Get("Location"))
	assert.Equal(t, 1, fx.notifier.calls)
	assert.Equal(t, 1, fx.scheduler.calls)

	stored, err := fx.db.RecentBookings(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Jane Doe", stored[0].Name)
	assert.NotZero(t, stored[0].ID)
	assert.False(t, stored[0].CreatedAt.IsZero())
}

func TestBookMissingFieldReturns400(t *testing.T) {
	fx := newFixture(t, Options{})

	form := bookingForm()
	form.Del("email")

	w := postBook(fx.handler, form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "All fields required", strings.TrimSpace(w.Body.String()))
	assert.Zero(t, fx.notifier.calls)
	assert.Zero(t, fx.scheduler.calls)

	stored, err := fx.db.RecentBookings(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestBookNotifierFailureReturns500ButPersists(t *testing.T) {
	fx := newFixture(t, Options{})
	fx.notifier.err = errors.New("smtp down")

	w := postBook(fx.handler, bookingForm())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error booking appointment", strings.TrimSpace(w.Body.String()))
	assert.Zero(t, fx.scheduler.calls)

	// The booking survives the failed notification.
	stored, err := fx.db.RecentBookings(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestBookMalformedTimeReturns500AfterNotify(t *testing.T) {
	fx := newFixture(t, Options{})

	form := bookingForm()
	form.Set("time", "not-a-time")

	w := postBook(fx.handler, form)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, fx.notifier.calls)
	assert.Equal(t, 1, fx.scheduler.calls)

	stored, err := fx.db.RecentBookings(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestBookMethodNotAllowed(t *testing.T) {
	fx := newFixture(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/book", nil)
	w := httptest.NewRecorder()
	fx.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestBookRateLimit(t *testing.T) {
	fx := newFixture(t, Options{RequestsPerSecond: 0.001, Burst: 1})

	first := postBook(fx.handler, bookingForm())
	assert.Equal(t, http.StatusSeeOther, first.Code)

	second := postBook(fx.handler, bookingForm())
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestConcurrentBookings(t *testing.T) {
	fx := newFixture(t, Options{})

	const n = 8
	done := make(chan int, n)
	for i := 0; i < n; i++ {
		go func() {
			w := postBook(fx.handler, bookingForm())
			done <- w.Code
		}()
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, http.StatusSeeOther, <-done)
	}

	stored, err := fx.db.RecentBookings(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, stored, n)
}

func TestBookingsListing(t *testing.T) {
	fx := newFixture(t, Options{})

	for i := 0; i < 3; i++ {
		w := postBook(fx.handler, bookingForm())
		require.Equal(t, http.StatusSeeOther, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/bookings?limit=2", nil)
	w := httptest.NewRecorder()
	fx.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, w.Body.String(), `"count":2`)
}

func TestBookingsListingBadLimit(t *testing.T) {
	fx := newFixture(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/bookings?limit=zero", nil)
	w := httptest.NewRecorder()
	fx.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingsListingRedisCache(t *testing.T) {
	fx := newFixture(t, Options{})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	fx.server.UseRedisCache(rdb, time.Minute)

	w := postBook(fx.handler, bookingForm())
	require.Equal(t, http.StatusSeeOther, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	w2 := httptest.NewRecorder()
	fx.handler.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	keys := mr.Keys()
	require.NotEmpty(t, keys)

	// A new booking drops the cached listing.
	w3 := postBook(fx.handler, bookingForm())
	require.Equal(t, http.StatusSeeOther, w3.Code)
	assert.Empty(t, mr.Keys())
}

func TestBookingsExport(t *testing.T) {
	fx := newFixture(t, Options{})

	w := postBook(fx.handler, bookingForm())
	require.Equal(t, http.StatusSeeOther, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/export", nil)
	w2 := httptest.NewRecorder()
	fx.handler.ServeHTTP(w2, req)

	require.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w2.Header().Get("Content-Type"))
	assert.NotZero(t, w2.Body.Len())
}
