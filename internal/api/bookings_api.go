package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"smilecare/internal/export"
	"smilecare/internal/metrics"
	"smilecare/internal/models"
)

const (
	defaultBookingsLimit = 50
	maxBookingsLimit     = 500

	recentBookingsCacheKey = "bookings:recent"
)

// BookingsResponse is the response for GET /api/bookings.
type BookingsResponse struct {
	Bookings []models.Booking `json:"bookings"`
	Count    int              `json:"count"`
}

// handleBookings returns the most recent bookings.
// GET /api/bookings?limit=N
func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := defaultBookingsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit; expected a positive integer")
			return
		}
		if n > maxBookingsLimit {
			n = maxBookingsLimit
		}
		limit = n
	}

	var resp BookingsResponse
	cacheKey := recentBookingsCacheKey + ":" + strconv.Itoa(limit)
	if s.readCache(r.Context(), cacheKey, &resp) {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	bookings, err := s.db.RecentBookings(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list recent bookings failed")
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	resp = BookingsResponse{Bookings: bookings, Count: len(bookings)}
	s.writeCache(r.Context(), cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

// handleBookingsExport streams every booking as an Excel workbook.
// GET /api/bookings/export
func (s *Server) handleBookingsExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_export")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings, err := s.db.ListBookings(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list bookings for export failed")
		writeError(w, http.StatusInternalServerError, "failed to export bookings")
		return
	}

	f, err := export.BuildWorkbook(bookings)
	if err != nil {
		s.logger.Error().Err(err).Msg("build bookings workbook failed")
		writeError(w, http.StatusInternalServerError, "failed to export bookings")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("write bookings workbook failed")
	}
}

func (s *Server) readCache(ctx context.Context, key string, out any) bool {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return false
	}
	val, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (s *Server) writeCache(ctx context.Context, key string, in any) {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(in)
	if err != nil {
		return
	}
	_ = s.rdb.Set(ctx, key, data, s.cacheTTL).Err()
}

// dropBookingsCache invalidates cached listings after a new booking.
func (s *Server) dropBookingsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	iter := s.rdb.Scan(ctx, 0, recentBookingsCacheKey+":*", 0).Iterator()
	for iter.Next(ctx) {
		_ = s.rdb.Del(ctx, iter.Val()).Err()
	}
}
