package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelcore/internal/domain"
	"hotelcore/internal/middleware"
	"hotelcore/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type api struct {
	router *gin.Engine
	tokens *jwt.Service
}

func newAPI(t *testing.T, f *fixture) *api {
	t.Helper()
	tokens := jwt.New("handler-test-secret", time.Hour)
	router := gin.New()
	NewHandler(f.service).RegisterRoutes(router.Group("/api/v1", middleware.JWTAuth(tokens)), nil)
	return &api{router: router, tokens: tokens}
}

func (a *api) do(t *testing.T, method, path string, role domain.Role, userID int64, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	token, err := a.tokens.GenerateToken(userID, role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func bookingFrom(t *testing.T, env envelope) domain.Booking {
	t.Helper()
	var data struct {
		Booking domain.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Booking
}

func TestHandler_CreateAndCheckIn(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "401", 2, 150)
	a := newAPI(t, f)

	code, env := a.do(t, http.MethodPost, "/api/v1/bookings", domain.RoleReceptionist, 10,
		f.request(r.ID, "2025-03-01", "2025-03-03", 2))
	require.Equal(t, http.StatusCreated, code, env.Error.Message)
	b := bookingFrom(t, env)
	assert.Equal(t, 300.0, b.TotalAmount)
	assert.Equal(t, domain.BookingConfirmed, b.Status)

	code, env = a.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/check-in", b.ID), domain.RoleReceptionist, 10, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.BookingCheckedIn, bookingFrom(t, env).Status)

	code, env = a.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/cancel", b.ID), domain.RoleReceptionist, 10,
		CancelBookingRequest{Reason: "changed plans"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)
}

func TestHandler_ErrorMapping(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "402", 2, 150)
	a := newAPI(t, f)

	_, err := f.service.CreateBooking(t.Context(), f.request(r.ID, "2025-03-10", "2025-03-12", 1))
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		role   domain.Role
		body   any
		status int
		code   string
	}{
		{"overlap", http.MethodPost, "/api/v1/bookings", domain.RoleManager,
			f.request(r.ID, "2025-03-11", "2025-03-13", 1), http.StatusConflict, CodeRoomUnavailable},
		{"capacity", http.MethodPost, "/api/v1/bookings", domain.RoleManager,
			f.request(r.ID, "2025-03-20", "2025-03-22", 5), http.StatusBadRequest, CodeCapacityExceeded},
		{"date range", http.MethodPost, "/api/v1/bookings", domain.RoleManager,
			f.request(r.ID, "2025-03-22", "2025-03-20", 1), http.StatusBadRequest, CodeInvalidDateRange},
		{"missing booking", http.MethodGet, "/api/v1/bookings/999", domain.RoleManager, nil, http.StatusNotFound, "NOT_FOUND"},
		{"bad id", http.MethodGet, "/api/v1/bookings/abc", domain.RoleManager, nil, http.StatusBadRequest, "INVALID_ID"},
		{"guest cannot book at the desk", http.MethodPost, "/api/v1/bookings", domain.RoleGuest,
			f.request(r.ID, "2025-04-01", "2025-04-02", 1), http.StatusForbidden, ""},
		{"housekeeping cannot cancel", http.MethodPost, "/api/v1/bookings/1/cancel", domain.RoleHousekeeping,
			CancelBookingRequest{Reason: "x"}, http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := a.do(t, tt.method, tt.path, tt.role, 10, tt.body)
			assert.Equal(t, tt.status, code)
			assert.False(t, env.Success)
			if tt.code != "" {
				assert.Equal(t, tt.code, env.Error.Code)
			}
		})
	}
}

func TestHandler_Availability(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "403", 2, 150)
	a := newAPI(t, f)

	b, err := f.service.CreateBooking(t.Context(), f.request(r.ID, "2025-03-10", "2025-03-12", 1))
	require.NoError(t, err)

	check := func(query string) bool {
		code, env := a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d/availability?%s", r.ID, query), domain.RoleReceptionist, 10, nil)
		require.Equal(t, http.StatusOK, code, env.Error.Message)
		var resp OverlapResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		return resp.Overlap
	}

	assert.True(t, check("check_in=2025-03-11&check_out=2025-03-13"))
	assert.False(t, check("check_in=2025-03-12&check_out=2025-03-14"))
	assert.False(t, check(fmt.Sprintf("check_in=2025-03-11&check_out=2025-03-13&exclude_id=%d", b.ID)))

	code, _ := a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d/availability?check_in=2025-03-11", r.ID), domain.RoleReceptionist, 10, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d/busy?from=2025-03-01&to=2025-04-01", r.ID), domain.RoleManager, 10, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), b.BookingNumber)
}

func TestHandler_DeleteIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "404", 2, 150)
	a := newAPI(t, f)

	b, err := f.service.CreateBooking(t.Context(), f.request(r.ID, "2025-03-05", "2025-03-07", 1))
	require.NoError(t, err)
	_, err = f.service.CancelBooking(t.Context(), b.ID, "duplicate")
	require.NoError(t, err)

	path := fmt.Sprintf("/api/v1/bookings/%d", b.ID)
	code, _ := a.do(t, http.MethodDelete, path, domain.RoleManager, 10, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(t, http.MethodDelete, path, domain.RoleAdmin, 1, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = a.do(t, http.MethodGet, path, domain.RoleAdmin, 1, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
