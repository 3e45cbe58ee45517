package parking

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-garage/internal/logging"
)

type InstrumentedGarage struct {
	*Garage
	telemetry *TelemetryProvider

	// Metrics
	checkInOperations  metric.Int64Counter
	checkOutOperations metric.Int64Counter
	paymentOperations  metric.Int64Counter
	passSales          metric.Int64Counter
	revenue            metric.Float64Counter
	occupancyGauge     metric.Int64UpDownCounter
	operationDuration  metric.Float64Histogram
	totalSlotsGauge    metric.Int64UpDownCounter
}

func NewInstrumentedGarage(garage *Garage, telemetry *TelemetryProvider) (*InstrumentedGarage, error) {
	meter := telemetry.Meter()

	checkInOperations, err := meter.Int64Counter("garage_check_in_operations_total",
		metric.WithDescription("Total number of check-in attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	checkOutOperations, err := meter.Int64Counter("garage_check_out_operations_total",
		metric.WithDescription("Total number of check-out attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	paymentOperations, err := meter.Int64Counter("garage_payment_operations_total",
		metric.WithDescription("Total number of payment confirmations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	passSales, err := meter.Int64Counter("garage_pass_sales_total",
		metric.WithDescription("Total number of passes issued"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	revenue, err := meter.Float64Counter("garage_revenue_total",
		metric.WithDescription("Parking fees collected"),
		metric.WithUnit("{currency}"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("garage_occupied_slots",
		metric.WithDescription("Current number of occupied parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("garage_operation_duration_seconds",
		metric.WithDescription("Duration of garage operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64UpDownCounter("garage_total_slots",
		metric.WithDescription("Total number of parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	ig := &InstrumentedGarage{
		Garage:             garage,
		telemetry:          telemetry,
		checkInOperations:  checkInOperations,
		checkOutOperations: checkOutOperations,
		paymentOperations:  paymentOperations,
		passSales:          passSales,
		revenue:            revenue,
		occupancyGauge:     occupancyGauge,
		operationDuration:  operationDuration,
		totalSlotsGauge:    totalSlotsGauge,
	}

	totalSlotsGauge.Add(context.Background(), int64(garage.Capacity()))

	return ig, nil
}

// outcome labels a failed operation by the rejection it hit.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrDuplicateActiveSession):
		return "duplicate"
	case errors.Is(err, ErrUnrecognizedVehicleCategory):
		return "unrecognized_category"
	case errors.Is(err, ErrInsufficientCapacity):
		return "full"
	case errors.Is(err, ErrNoActiveSession):
		return "not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrInvalidPlate):
		return "invalid_plate"
	default:
		return "failed"
	}
}

// categoryLabel keeps metric cardinality bounded by the known categories.
func categoryLabel(category string) string {
	c, err := ParseCategory(category)
	if err != nil {
		return "unrecognized"
	}
	return c.String()
}

func (ig *InstrumentedGarage) finish(ctx context.Context, span trace.Span, start time.Time, op string, err error, labels ...attribute.KeyValue) []attribute.KeyValue {
	labels = append(labels,
		attribute.String("operation", op),
		attribute.String("status", outcome(err)),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, ErrAllocationConsistency) {
			logging.Errorf(ctx, "garage %s failed: %v", op, err)
		} else {
			logging.Warnf(ctx, "garage %s rejected: %v", op, err)
		}
	}

	ig.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))
	return labels
}

func (ig *InstrumentedGarage) CheckIn(ctx context.Context, plate, category string) (CheckInResult, error) {
	ctx, span := ig.telemetry.Tracer().Start(ctx, "garage.check_in",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
			attribute.String("vehicle.category", category),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_contiguous_slots")

	result, err := ig.Garage.CheckIn(plate, category)

	labels := ig.finish(ctx, span, start, "check_in", err, attribute.String("vehicle_category", categoryLabel(category)))
	ig.checkInOperations.Add(ctx, 1, metric.WithAttributes(labels...))

	if err == nil {
		span.SetAttributes(
			attribute.Int("ticket.token", result.Ticket.Token),
			attribute.IntSlice("ticket.slots", result.Ticket.Slots),
			attribute.Bool("subscription.valid", result.HasValidPass),
		)
		span.AddEvent("slots_reserved", trace.WithAttributes(
			attribute.Int("slot_count", len(result.Ticket.Slots)),
		))
		ig.occupancyGauge.Add(ctx, int64(len(result.Ticket.Slots)))
	}

	return result, err
}

func (ig *InstrumentedGarage) CheckOut(ctx context.Context, plate string) (Ticket, decimal.Decimal, error) {
	ctx, span := ig.telemetry.Tracer().Start(ctx, "garage.check_out",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("computing_fee")

	ticket, fee, err := ig.Garage.CheckOut(plate)

	labels := ig.finish(ctx, span, start, "check_out", err)

	if err == nil {
		feeValue, _ := fee.Float64()
		labels = append(labels, attribute.String("plan", ticket.Plan))
		span.SetAttributes(
			attribute.Int("ticket.token", ticket.Token),
			attribute.String("ticket.plan", ticket.Plan),
			attribute.Float64("ticket.fee", feeValue),
		)
		span.AddEvent("fee_assigned")
	}

	ig.checkOutOperations.Add(ctx, 1, metric.WithAttributes(labels...))

	return ticket, fee, err
}

func (ig *InstrumentedGarage) ConfirmPayment(ctx context.Context, plate string) (Ticket, error) {
	ctx, span := ig.telemetry.Tracer().Start(ctx, "garage.confirm_payment",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("releasing_slots")

	ticket, err := ig.Garage.ConfirmPayment(plate)

	labels := ig.finish(ctx, span, start, "confirm_payment", err)
	ig.paymentOperations.Add(ctx, 1, metric.WithAttributes(labels...))

	if err == nil {
		paid, _ := ticket.Fee.Float64()
		span.SetAttributes(attribute.Int("ticket.token", ticket.Token))
		span.AddEvent("slots_released", trace.WithAttributes(
			attribute.Int("slot_count", len(ticket.Slots)),
		))
		ig.occupancyGauge.Add(ctx, -int64(len(ticket.Slots)))
		ig.revenue.Add(ctx, paid, metric.WithAttributes(attribute.String("plan", ticket.Plan)))
	}

	return ticket, err
}

func (ig *InstrumentedGarage) BuyPass(ctx context.Context, kind PassKind, plate, category string) (Pass, error) {
	ctx, span := ig.telemetry.Tracer().Start(ctx, "garage.buy_pass",
		trace.WithAttributes(
			attribute.String("pass.kind", kind.String()),
			attribute.String("vehicle.plate", plate),
			attribute.String("vehicle.category", category),
		))
	defer span.End()

	start := time.Now()

	var (
		pass Pass
		err  error
	)
	if kind == MonthlyPass {
		pass, err = ig.Garage.BuyMonthlyPass(plate, category)
	} else {
		pass, err = ig.Garage.BuySingleEntryPass(plate, category)
	}

	labels := ig.finish(ctx, span, start, "buy_pass", err, attribute.String("pass_kind", kind.String()))
	ig.passSales.Add(ctx, 1, metric.WithAttributes(labels...))

	if err == nil {
		span.SetAttributes(attribute.String("pass.permit_id", pass.PermitID))
	}

	return pass, err
}

func (ig *InstrumentedGarage) Locate(ctx context.Context, plate string) (Location, error) {
	ctx, span := ig.telemetry.Tracer().Start(ctx, "garage.locate",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("searching_by_plate")

	loc, err := ig.Garage.Locate(plate)

	if err != nil {
		span.AddEvent("vehicle_not_found")
		ig.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("operation", "locate"),
			attribute.String("status", outcome(err)),
		))
		return loc, err
	}

	span.AddEvent("vehicle_found", trace.WithAttributes(
		attribute.IntSlice("slots", loc.Slots),
	))
	ig.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "locate"),
		attribute.String("status", "found"),
	))

	return loc, nil
}

func (ig *InstrumentedGarage) Status(ctx context.Context) StatusSummary {
	_, span := ig.telemetry.Tracer().Start(ctx, "garage.status")
	defer span.End()

	status := ig.Garage.Status()

	span.SetAttributes(
		attribute.Int("occupied_slots_count", status.Occupied),
		attribute.Int("total_capacity", status.Capacity),
	)

	return status
}
