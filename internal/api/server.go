// Package api exposes the booking service over HTTP: the public booking
// form endpoint, static assets, and a small operator API.
package api

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"smilecare/internal/database"
	"smilecare/internal/metrics"
	"smilecare/internal/models"
	"smilecare/internal/pipeline"
)

// Server wires HTTP handlers to the booking pipeline and the store.
type Server struct {
	db        *database.DB
	pipeline  *pipeline.Pipeline
	limiter   *rate.Limiter
	publicDir string
	logger    *zerolog.Logger

	rdb      *redis.Client
	cacheTTL time.Duration
}

// Options configures optional server behavior.
type Options struct {
	// PublicDir, when set, is served as static files at the root path.
	PublicDir string
	// RequestsPerSecond/Burst apply a token-bucket limit to POST /book.
	// Zero disables limiting.
	RequestsPerSecond float64
	Burst             int
}

func NewServer(db *database.DB, p *pipeline.Pipeline, opts Options, logger *zerolog.Logger) *Server {
	s := &Server{
		db:        db,
		pipeline:  p,
		publicDir: opts.PublicDir,
		logger:    logger,
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return s
}

// UseRedisCache enables Redis caching for the recent-bookings listing.
func (s *Server) UseRedisCache(rdb *redis.Client, ttl time.Duration) {
	s.rdb = rdb
	s.cacheTTL = ttl
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/book", s.handleBook)
	mux.HandleFunc("/api/bookings", s.handleBookings)
	mux.HandleFunc("/api/bookings/export", s.handleBookingsExport)
	if s.publicDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.publicDir)))
	}
	return mux
}

// handleBook accepts the form submission and runs the pipeline.
// POST /book
func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("book")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	if s.limiter != nil && !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	req := &models.BookingRequest{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
		Phone: r.PostFormValue("phone"),
		Date:  r.PostFormValue("date"),
		Time:  r.PostFormValue("time"),
	}

	booking, err := s.pipeline.Process(r.Context(), req)
	if err != nil {
		if _, ok := pipeline.IsIncomplete(err); ok {
			writeError(w, http.StatusBadRequest, "All fields required")
			return
		}
		// The booking may already be persisted at this point; the
		// pipeline does not roll back. The caller still sees a failure.
		writeError(w, http.StatusInternalServerError, "Error booking appointment")
		return
	}

	s.dropBookingsCache(r.Context())
	s.logger.Info().Int64("booking_id", booking.ID).Msg("booking accepted")
	http.Redirect(w, r, "/thankyou.html", http.StatusSeeOther)
}
