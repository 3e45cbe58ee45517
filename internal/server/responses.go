package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"parking-garage/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Garage  string `json:"garage"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type CheckInRequest struct {
	Plate    string `json:"plate"`
	Category string `json:"category"`
}

type PlateRequest struct {
	Plate string `json:"plate"`
}

type PassRequest struct {
	Plate    string `json:"plate"`
	Category string `json:"category"`
}

type TicketResponse struct {
	Token    int        `json:"token"`
	Plate    string     `json:"plate"`
	Category string     `json:"category"`
	Slots    []int      `json:"slots"`
	State    string     `json:"state"`
	CheckIn  time.Time  `json:"check_in"`
	CheckOut *time.Time `json:"check_out,omitempty"`
	Fee      string     `json:"fee"`
	Plan     string     `json:"plan,omitempty"`
}

type CheckInResponse struct {
	Ticket       TicketResponse `json:"ticket"`
	HasValidPass bool           `json:"has_valid_pass"`
}

type CheckOutResponse struct {
	Ticket    TicketResponse `json:"ticket"`
	AmountDue string         `json:"amount_due"`
	Duration  string         `json:"duration"`
}

type PassResponse struct {
	PermitID      string    `json:"permit_id"`
	Kind          string    `json:"kind"`
	Plate         string    `json:"plate"`
	Category      string    `json:"category"`
	ActivatedAt   time.Time `json:"activated_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	Price         string    `json:"price"`
	Status        string    `json:"status"`
	RemainingDays int       `json:"remaining_days"`
}

type FindVehicleResponse struct {
	Plate  string          `json:"plate"`
	Slots  []int           `json:"slots"`
	Ticket *TicketResponse `json:"ticket,omitempty"`
}

type SlotStatus struct {
	SlotNumber int    `json:"slot_number"`
	Plate      string `json:"plate,omitempty"`
	Category   string `json:"category,omitempty"`
	Occupied   bool   `json:"occupied"`
}

type StatusResponse struct {
	parking.StatusSummary
	Plan  string       `json:"plan,omitempty"`
	Slots []SlotStatus `json:"slots"`
}

func newTicketResponse(t parking.Ticket) TicketResponse {
	return TicketResponse{
		Token:    t.Token,
		Plate:    t.Vehicle.Plate,
		Category: t.Vehicle.Category.String(),
		Slots:    t.Slots,
		State:    t.State().String(),
		CheckIn:  t.CheckIn,
		CheckOut: t.CheckOut,
		Fee:      t.Fee.StringFixed(2),
		Plan:     t.Plan,
	}
}

func newPassResponse(p parking.Pass, now time.Time) PassResponse {
	return PassResponse{
		PermitID:      p.PermitID,
		Kind:          p.Kind.String(),
		Plate:         p.Plate,
		Category:      p.Category.String(),
		ActivatedAt:   p.ActivatedAt,
		ExpiresAt:     p.ExpiresAt,
		Price:         p.Price.StringFixed(2),
		Status:        p.Status(now),
		RemainingDays: p.RemainingDays(now),
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}

// statusFor maps a garage rejection onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrUnrecognizedVehicleCategory),
		errors.Is(err, parking.ErrInvalidPlate):
		return http.StatusBadRequest
	case errors.Is(err, parking.ErrNoActiveSession):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrDuplicateActiveSession),
		errors.Is(err, parking.ErrInsufficientCapacity),
		errors.Is(err, parking.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeGarageError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		WriteError(ctx, w, status, "Internal server error")
		return
	}
	WriteError(ctx, w, status, err.Error())
}
