package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"parking-garage/internal/parking"
	"parking-garage/internal/pricing"
)

type Handler struct {
	garage      *parking.InstrumentedGarage
	serviceName string
}

func NewHandler(garage *parking.InstrumentedGarage, serviceName string) *Handler {
	return &Handler{garage: garage, serviceName: serviceName}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Garage:  h.garage.Name(),
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Plate) == "" || strings.TrimSpace(req.Category) == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate and category are required")
		return
	}

	result, err := h.garage.CheckIn(ctx, req.Plate, req.Category)
	if err != nil {
		writeGarageError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, "Vehicle checked in successfully", CheckInResponse{
		Ticket:       newTicketResponse(result.Ticket),
		HasValidPass: result.HasValidPass,
	})
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PlateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Plate) == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate is required")
		return
	}

	ticket, fee, err := h.garage.CheckOut(ctx, req.Plate)
	if err != nil {
		writeGarageError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, "Vehicle checked out, payment pending", CheckOutResponse{
		Ticket:    newTicketResponse(ticket),
		AmountDue: fee.StringFixed(2),
		Duration:  ticket.Duration(h.garage.Now()).String(),
	})
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PlateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Plate) == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate is required")
		return
	}

	ticket, err := h.garage.ConfirmPayment(ctx, req.Plate)
	if err != nil {
		writeGarageError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, "Payment confirmed, slots released", newTicketResponse(ticket))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary := h.garage.Status(ctx)
	slots := h.garage.Slots()

	statuses := make([]SlotStatus, 0, len(slots))
	for _, slot := range slots {
		s := SlotStatus{SlotNumber: slot.Number, Occupied: slot.IsOccupied}
		if slot.Vehicle != nil {
			s.Plate = slot.Vehicle.Plate
			s.Category = slot.Vehicle.Category.String()
		}
		statuses = append(statuses, s)
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", StatusResponse{
		StatusSummary: summary,
		Plan:          h.garage.ActivePlan(),
		Slots:         statuses,
	})
}

func (h *Handler) FindByPlate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plate := chi.URLParam(r, "plate")
	if plate == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate is required")
		return
	}

	loc, err := h.garage.Locate(ctx, plate)
	if err != nil {
		writeGarageError(ctx, w, err)
		return
	}

	response := FindVehicleResponse{Plate: loc.Plate, Slots: loc.Slots}
	if loc.Ticket != nil {
		t := newTicketResponse(*loc.Ticket)
		response.Ticket = &t
	}

	WriteSuccess(ctx, w, "Vehicle found", response)
}

func (h *Handler) ActiveTickets(w http.ResponseWriter, r *http.Request) {
	tickets := h.garage.ActiveTickets()
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, newTicketResponse(t))
	}
	WriteSuccess(r.Context(), w, "Active tickets retrieved", out)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	tickets := h.garage.History()
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, newTicketResponse(t))
	}
	WriteSuccess(r.Context(), w, "Settled tickets retrieved", out)
}

func (h *Handler) BuyMonthlyPass(w http.ResponseWriter, r *http.Request) {
	h.buyPass(w, r, parking.MonthlyPass)
}

func (h *Handler) BuySingleEntryPass(w http.ResponseWriter, r *http.Request) {
	h.buyPass(w, r, parking.SingleEntryPass)
}

func (h *Handler) buyPass(w http.ResponseWriter, r *http.Request, kind parking.PassKind) {
	ctx := r.Context()

	var req PassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Plate) == "" || strings.TrimSpace(req.Category) == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate and category are required")
		return
	}

	pass, err := h.garage.BuyPass(ctx, kind, req.Plate, req.Category)
	if err != nil {
		writeGarageError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, kind.String()+" issued", newPassResponse(pass, h.garage.Now()))
}

func (h *Handler) GetPasses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	passes := h.garage.Passes(chi.URLParam(r, "plate"))
	if len(passes) == 0 {
		WriteError(ctx, w, http.StatusNotFound, "No subscription found")
		return
	}

	now := h.garage.Now()
	out := make([]PassResponse, 0, len(passes))
	for _, p := range passes {
		out = append(out, newPassResponse(p, now))
	}

	WriteSuccess(ctx, w, "Passes retrieved", out)
}

func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, "Rate schedules retrieved", map[string]any{
		"active_plan": h.garage.ActivePlan(),
		"schedules":   pricing.Rates(),
	})
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, "Daily summary generated", h.garage.DailySummary(h.garage.Now()))
}
