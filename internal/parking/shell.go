package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const timeLayout = "2006-01-02 15:04"

// Shell is the operator console: one command per line.
type Shell struct {
	garage  *InstrumentedGarage
	scanner *bufio.Scanner
	out     io.Writer
}

func NewShell(garage *InstrumentedGarage, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		garage:  garage,
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(args ...any) {
	fmt.Fprintln(s.out, args...)
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.garage.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for {
		if ctx.Err() != nil || !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		// Create a new span for each command
		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("command.name", command))

	switch command {
	case "check_in":
		s.handleCheckIn(ctx, parts)
	case "check_out":
		s.handleCheckOut(ctx, parts)
	case "pay":
		s.handlePay(ctx, parts)
	case "find":
		s.handleFind(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "tickets":
		s.handleTickets()
	case "buy_monthly":
		s.handleBuyPass(ctx, MonthlyPass, parts)
	case "buy_single":
		s.handleBuyPass(ctx, SingleEntryPass, parts)
	case "pass":
		s.handlePass(parts)
	case "plan":
		s.handlePlan()
	case "report":
		s.handleReport()
	default:
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) rejection(err error) {
	switch {
	case errors.Is(err, ErrDuplicateActiveSession):
		s.println("Vehicle already has an active ticket")
	case errors.Is(err, ErrUnrecognizedVehicleCategory):
		s.println("Unrecognized vehicle category")
	case errors.Is(err, ErrInsufficientCapacity):
		s.println("Sorry, not enough adjacent free slots")
	case errors.Is(err, ErrNoActiveSession):
		s.println("No active ticket found")
	case errors.Is(err, ErrInvalidTransition):
		s.printf("Not allowed: %s\n", err.Error())
	default:
		s.printf("Error: %s\n", err.Error())
	}
}

func (s *Shell) handleCheckIn(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		s.println("Usage: check_in <category> <plate>")
		return
	}

	result, err := s.garage.CheckIn(ctx, parts[2], parts[1])
	if err != nil {
		s.rejection(err)
		return
	}

	t := result.Ticket
	s.printf("Token %d: %s parked at slot(s) %s\n", t.Token, t.Vehicle, joinSlots(t.Slots))
	if result.HasValidPass {
		s.println("Subscription: active pass on file")
	}
}

func (s *Shell) handleCheckOut(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: check_out <plate>")
		return
	}

	ticket, fee, err := s.garage.CheckOut(ctx, parts[1])
	if err != nil {
		s.rejection(err)
		return
	}

	d := ticket.Duration(s.garage.Now())
	s.printf("Token %d: parked %dh %02dm, %s, amount due $%s\n",
		ticket.Token, int(d.Hours()), int(d.Minutes())%60, ticket.Plan, fee.StringFixed(2))
}

func (s *Shell) handlePay(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: pay <plate>")
		return
	}

	ticket, err := s.garage.ConfirmPayment(ctx, parts[1])
	if err != nil {
		s.rejection(err)
		return
	}

	s.printf("Token %d settled: $%s paid, slot(s) %s free\n", ticket.Token, ticket.Fee.StringFixed(2), joinSlots(ticket.Slots))
}

func (s *Shell) handleFind(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: find <plate>")
		return
	}

	loc, err := s.garage.Locate(ctx, parts[1])
	if err != nil {
		s.println("Not found")
		return
	}

	s.printf("%s at slot(s) %s", loc.Plate, joinSlots(loc.Slots))
	if loc.Ticket != nil {
		s.printf(", checked in %s", loc.Ticket.CheckIn.Format(timeLayout))
	}
	s.println()
}

func (s *Shell) handleStatus(ctx context.Context) {
	status := s.garage.Status(ctx)
	s.printf("Total: %d\tAvailable: %d\tOccupied: %d\tOccupancy: %.1f%%\n",
		status.Capacity, status.Free, status.Occupied, status.OccupancyRate)
}

func (s *Shell) handleTickets() {
	tickets := s.garage.ActiveTickets()
	if len(tickets) == 0 {
		s.println("Garage is empty")
		return
	}

	s.println("Token\tPlate\tCategory\tSlots\tState")
	for _, t := range tickets {
		s.printf("%d\t%s\t%s\t%s\t%s\n", t.Token, t.Vehicle.Plate, t.Vehicle.Category, joinSlots(t.Slots), t.State())
	}
}

func (s *Shell) handleBuyPass(ctx context.Context, kind PassKind, parts []string) {
	if len(parts) != 3 {
		s.printf("Usage: %s <category> <plate>\n", parts[0])
		return
	}

	pass, err := s.garage.BuyPass(ctx, kind, parts[2], parts[1])
	if err != nil {
		s.rejection(err)
		return
	}

	s.printf("%s %s issued to %s, valid until %s, price $%s\n",
		pass.Kind, pass.PermitID, pass.Plate, pass.ExpiresAt.Format(timeLayout), pass.Price.StringFixed(2))
}

func (s *Shell) handlePass(parts []string) {
	if len(parts) != 2 {
		s.println("Usage: pass <plate>")
		return
	}

	passes := s.garage.Passes(parts[1])
	if len(passes) == 0 {
		s.println("No subscription found")
		return
	}

	now := s.garage.Now()
	for _, p := range passes {
		s.printf("%s %s: %s, expires %s\n", p.Kind, p.PermitID, p.Status(now), p.ExpiresAt.Format(timeLayout))
	}
}

func (s *Shell) handlePlan() {
	plan := s.garage.ActivePlan()
	if plan == "" {
		plan = "unknown"
	}
	s.printf("Active rate plan: %s\n", plan)
}

func (s *Shell) handleReport() {
	r := s.garage.DailySummary(s.garage.Now())
	s.printf("Date: %s\n", r.Date)
	s.printf("Check-ins: %d\tDepartures: %d\tActive: %d\n", r.Entries, r.Exits, r.Active)
	s.printf("Available: %d\tOccupied: %d\n", r.Free, r.Occupied)
	s.printf("Revenue: $%s\n", r.Revenue.StringFixed(2))
	s.printf("Monthly passes: %d\tSingle-entry passes: %d\n", r.MonthlyPasses, r.SingleEntries)
}

func joinSlots(slots []int) string {
	parts := make([]string, len(slots))
	for i, n := range slots {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
