package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinebook/seat-reservation/internal/engine"
	"github.com/cinebook/seat-reservation/internal/handler"
	"github.com/cinebook/seat-reservation/internal/model"
	"github.com/cinebook/seat-reservation/internal/repository/memory"
)

// newAPI wires the handlers over an in-memory store with one show
// and returns everything a request test needs.
func newAPI(t *testing.T) (*echo.Echo, *handler.SeatHandler, *handler.BookingHandler) {
	t.Helper()
	store := memory.NewStore()
	store.AddShow(&model.Show{
		ID:       1,
		Title:    "Dune",
		StartsAt: time.Now().UTC().Add(48 * time.Hour),
		Status:   "SCHEDULED",
	})
	clock := engine.RealClock()
	inv := engine.NewSeatInventory(store, store, clock)
	booking := engine.NewBookingEngine(store, store, inv, nil, clock)
	return echo.New(), handler.NewSeatHandler(inv, store), handler.NewBookingHandler(booking)
}

// doJSON runs one handler against a synthetic request as the given
// holder and returns the recorder.
func doJSON(t *testing.T, e *echo.Echo, method, path, body, holder string, h echo.HandlerFunc, paramValue string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	c.SetParamNames("id")
	c.SetParamValues(paramValue)
	c.Set("holder_id", holder)
	require.NoError(t, h(c))
	return rec
}

func TestHoldSnapshotBookFlow(t *testing.T) {
	e, seats, booking := newAPI(t)

	// generate the seat map
	rec := doJSON(t, e, http.MethodPost, "/v1/shows/:id/seats",
		`{"blocks":[{"seat_type":"CLASSIC","count":4,"base_price":200}]}`,
		"admin", seats.CreateSeats, "1")
	require.Equal(t, http.StatusCreated, rec.Code)

	// alice holds two seats
	rec = doJSON(t, e, http.MethodPost, "/v1/shows/:id/hold",
		`{"seat_nos":["C1","C2"]}`, "alice", seats.HoldSeats, "1")
	require.Equal(t, http.StatusCreated, rec.Code)
	var holdResp struct {
		SeatNos   []string `json:"seat_nos"`
		ExpiresAt string   `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holdResp))
	assert.ElementsMatch(t, []string{"C1", "C2"}, holdResp.SeatNos)
	assert.NotEmpty(t, holdResp.ExpiresAt)

	// bob sees them as held, alice as her own
	rec = doJSON(t, e, http.MethodGet, "/v1/shows/:id/seats", "", "bob", seats.GetSeats, "1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), engine.SeatHeld)
	rec = doJSON(t, e, http.MethodGet, "/v1/shows/:id/seats", "", "alice", seats.GetSeats, "1")
	assert.Contains(t, rec.Body.String(), engine.SeatHeldByYou)

	// bob cannot steal a held seat
	rec = doJSON(t, e, http.MethodPost, "/v1/shows/:id/hold",
		`{"seat_nos":["C2","C3"]}`, "bob", seats.HoldSeats, "1")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "C2")
	assert.NotContains(t, rec.Body.String(), "C3")

	// alice books her hold
	rec = doJSON(t, e, http.MethodPost, "/v1/shows/:id/book",
		`{"seat_nos":["C1","C2"]}`, "alice", booking.BookSeats, "1")
	require.Equal(t, http.StatusCreated, rec.Code)
	var bookResp struct {
		TicketID    string `json:"ticket_id"`
		TotalAmount int    `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bookResp))
	assert.NotEmpty(t, bookResp.TicketID)
	assert.Equal(t, 400, bookResp.TotalAmount)

	// the ticket is visible to alice but not to bob
	rec = doJSON(t, e, http.MethodGet, "/v1/tickets/:id", "", "alice", booking.GetTicket, bookResp.TicketID)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, e, http.MethodGet, "/v1/tickets/:id", "", "bob", booking.GetTicket, bookResp.TicketID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHoldRequiresAuthAndValidInput(t *testing.T) {
	e, seats, _ := newAPI(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/shows/:id/hold",
		`{"seat_nos":["C1"]}`, "guest", seats.HoldSeats, "1")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/v1/shows/:id/hold",
		`{"seat_nos":[]}`, "alice", seats.HoldSeats, "1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/v1/shows/:id/hold",
		`{"seat_nos":["C1"]}`, "alice", seats.HoldSeats, "999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReleaseHoldIdempotent(t *testing.T) {
	e, seats, _ := newAPI(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/shows/:id/seats",
		`{"blocks":[{"seat_type":"PREMIUM","count":2,"base_price":500}]}`,
		"admin", seats.CreateSeats, "1")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/v1/shows/:id/hold",
		`{"seat_nos":["P1"]}`, "alice", seats.HoldSeats, "1")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, "/v1/shows/:id/hold", "", "alice", seats.ReleaseHolds, "1")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, e, http.MethodDelete, "/v1/shows/:id/hold", "", "alice", seats.ReleaseHolds, "1")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
