package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"pasajes-cli/booking"
	"pasajes-cli/fare"
	"pasajes-cli/seatmap"
	"pasajes-cli/service"
	"pasajes-cli/store"
)

func newSeatsCmd(flags *bookingFlags) *cobra.Command {
	var (
		selectSeats string
		handoff     bool
	)
	cmd := &cobra.Command{
		Use:   "seats",
		Short: "Print the priced seat map of a bus",
		Long:  `Fetches layout and fares once, prints every seat with its price and optionally prepares the booking for the selected seats.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bc, err := flags.context()
			if err != nil {
				return err
			}
			if bc.BusID == "" {
				return errors.New("--bus is required")
			}
			seats, err := parseSeatList(selectSeats)
			if err != nil {
				return err
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.log.Close()
			log := e.log.WithBus(bc.BusID)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			engine := flags.engine(bc, e.cfg, log)
			defer engine.Close()
			snap := seatmap.NewLoader(e.client, e.client, log).Load(ctx, bc.BusID, bc.RouteID)
			engine.Apply(engine.BeginRefresh(), snap)
			if service.IsUnauthenticated(snap.Err()) {
				return fmt.Errorf("%w: run `%s login`", snap.Err(), appName)
			}
			if service.IsNotFound(snap.LayoutErr) {
				return fmt.Errorf("seats unavailable for bus %s", bc.BusID)
			}
			if snap.LayoutErr != nil {
				return fmt.Errorf("load seats: %w", snap.LayoutErr)
			}

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			if snap.FareErr != nil {
				fmt.Fprintf(errOut, "warning: fares unavailable, fallback price in use: %v\n", snap.FareErr)
			}
			for _, n := range seats {
				if _, ok := engine.Toggle(n); !ok {
					fmt.Fprintf(errOut, "warning: seat %d cannot be selected\n", n)
				}
			}

			renderSeatTable(out, engine.PricedAll(), flags.floor, engine.Recompute())

			if !handoff {
				return nil
			}
			req, err := booking.FromEngine(engine)
			if err != nil {
				var verr *booking.ValidationError
				if errors.As(err, &verr) {
					renderIssues(errOut, verr.Issues)
				}
				return err
			}
			path, err := store.SaveHandoff(req)
			if err != nil {
				return fmt.Errorf("save booking: %w", err)
			}
			engine.ClearSelection()
			log.LogHandoff(ctx, req.ID.String(), req.BusID, len(req.Seats), req.Total.StringFixed(2))
			fmt.Fprintf(out, "Booking %s ready for payment: %d seat(s), total %s\nSaved to %s\n",
				req.ID, len(req.Seats), req.Total.StringFixed(2), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&selectSeats, "select", "", "comma separated seat numbers to select, e.g. 1,2")
	cmd.Flags().BoolVar(&handoff, "handoff", false, "prepare the booking for the selected seats and save it for payment")
	return cmd
}

func parseSeatList(value string) ([]int, error) {
	var seats []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid seat number %q", part)
		}
		seats = append(seats, n)
	}
	return seats, nil
}

// renderSeatTable prints one floor when floor is set, every floor otherwise.
func renderSeatTable(out io.Writer, priced []seatmap.PricedSeat, floor int, view seatmap.View) {
	rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Floor", "Seat", "Row", "Column", "Type", "Status", "Price", "Fare"}, rowConfigAutoMerge)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})

	for _, seat := range priced {
		if floor > 0 && seat.Floor != floor {
			continue
		}
		t.AppendRow(table.Row{
			seat.Floor,
			seat.SeatNumber,
			seat.Row,
			seat.Column,
			seat.SeatType,
			string(seat.Status),
			seat.Price.StringFixed(2),
			fareLabel(seat),
		}, rowConfigAutoMerge)
	}
	t.AppendFooter(table.Row{"", "", "", "", "", fmt.Sprintf("%d selected", view.SelectedCount), view.Total.StringFixed(2), ""})
	t.Render()
}

func fareLabel(seat seatmap.PricedSeat) string {
	if seat.Fare == nil {
		return "fallback"
	}
	if seat.Match == fare.MatchFirstAny {
		return seat.Fare.ID + " (generic)"
	}
	return seat.Fare.ID
}

func renderIssues(out io.Writer, issues []booking.SeatIssue) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Seat", "Problem"})
	for _, issue := range issues {
		seat := "-"
		if issue.SeatNumber > 0 {
			seat = strconv.Itoa(issue.SeatNumber)
		}
		t.AppendRow(table.Row{seat, issue.Reason})
	}
	t.Render()
}

