package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"holidaze/internal/availability"
	"holidaze/internal/booking"
	"holidaze/internal/events"
	"holidaze/internal/export"
	"holidaze/internal/format"
	"holidaze/internal/holidazeapi"
	"holidaze/internal/models"

	"github.com/spf13/cobra"
)

var errSessionExpired = errors.New("your session has expired; log in again")

// apiError replaces a 401 from the API with a prompt to log in again.
func apiError(err error) error {
	if holidazeapi.IsUnauthorized(err) {
		return errSessionExpired
	}
	return err
}

func newBookCmd(get func() *app) *cobra.Command {
	var (
		from, to string
		guests   int
	)
	cmd := &cobra.Command{
		Use:   "book <venue-id>",
		Short: "Book a stay at a venue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			ctx := cmd.Context()
			if _, err := a.auth.Profile(ctx); err != nil {
				return errors.New("log in before booking")
			}

			checkIn, err := models.ParseDay(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			checkOut, err := models.ParseDay(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			// The form clamps check-out like a date picker would; dates typed on
			// the command line are checked as given instead.
			sel := booking.Selection{VenueID: args[0], CheckIn: checkIn, CheckOut: checkOut, Guests: guests}
			if err := booking.ValidateSelection(sel, 0).Err(); err != nil {
				return err
			}

			v, err := a.client.GetVenue(ctx, args[0], holidazeapi.Include{})
			if err != nil {
				return apiError(err)
			}
			set, err := availability.Load(ctx, a.client, v.ID, a.logger)
			if err != nil {
				a.logger.Warn().Err(err).Str("venue_id", v.ID).Msg("booking without known availability")
			}

			form := booking.NewForm(*v, set, a.today())
			if _, err := form.CheckInChanged(checkIn); err != nil {
				return err
			}
			form.CheckOutChanged(checkOut)
			st := form.SetGuests(guests)
			if st.ErrorMessage != "" {
				return errors.New(st.ErrorMessage)
			}
			if !st.CheckIn.Equal(checkIn) || !st.CheckOut.Equal(checkOut) {
				return fmt.Errorf("cannot book %s to %s as requested", from, to)
			}

			ctrl := booking.NewController(a.client, a.bus, a.logger).WithRefetch(a.client)
			conf, err := ctrl.Submit(ctx, form)
			if err != nil {
				var verr *booking.ValidationError
				switch {
				case errors.As(err, &verr):
					return verr
				case errors.Is(err, booking.ErrRangeOverlap), errors.Is(err, booking.ErrBookingConflict):
					return errors.New(form.State().ErrorMessage)
				case holidazeapi.IsUnauthorized(err):
					return errSessionExpired
				default:
					a.logger.Debug().Err(err).Msg("submit failed")
					return errors.New(booking.FailureMessage)
				}
			}
			return conf.Render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "check-in date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "check-out date, YYYY-MM-DD")
	cmd.Flags().IntVar(&guests, "guests", 1, "number of guests")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newBookingsCmd(get func() *app) *cobra.Command {
	var exportPath string
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			profile, err := a.auth.Profile(cmd.Context())
			if err != nil {
				return err
			}
			bookings, err := a.client.ProfileBookings(cmd.Context(), profile.Name)
			if err != nil {
				return apiError(err)
			}

			if exportPath != "" {
				f, err := os.Create(exportPath)
				if err != nil {
					return err
				}
				if err := export.BookingsXLSX(bookings, f); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookings to %s\n", len(bookings), exportPath)
				return nil
			}

			if len(bookings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "You have no bookings.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tVENUE\tDATES\tNIGHTS\tGUESTS\tTOTAL")
			for i := range bookings {
				b := &bookings[i]
				venue, total := "", "-"
				if b.Venue != nil {
					venue = b.Venue.Title()
					total = "$" + format.Price(float64(b.Nights())*b.Venue.Price)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", b.ID, venue, format.DateRange(b.From(), b.To()), b.Nights(), b.Guests, total)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&exportPath, "export", "", "write bookings to an .xlsx file")
	return cmd
}

func newMyVenuesCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "my-venues",
		Short: "List the venues you manage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			profile, err := a.auth.Profile(cmd.Context())
			if err != nil {
				return err
			}
			venues, err := a.client.ProfileVenues(cmd.Context(), profile.Name)
			if err != nil {
				return apiError(err)
			}
			if len(venues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "You have no venues.")
				return nil
			}

			today := models.Day(a.today())
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tPRICE\tUPCOMING")
			for i := range venues {
				v := &venues[i]
				upcoming := 0
				for j := range v.Bookings {
					if !models.Day(v.Bookings[j].To()).Before(today) {
						upcoming++
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t$%s\t%d\n", v.ID, v.Title(), v.Location.String(), format.Price(v.Price), upcoming)
			}
			return tw.Flush()
		},
	}
}

func newCancelCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <booking-id>",
		Short: "Cancel one of your bookings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.client.DeleteBooking(cmd.Context(), args[0]); err != nil {
				if holidazeapi.IsNotFound(err) {
					return fmt.Errorf("booking %s not found", args[0])
				}
				return apiError(err)
			}
			if e, err := events.NewEvent(events.BookingCancelled, "", map[string]string{"bookingId": args[0]}); err == nil {
				a.bus.Publish(e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking %s cancelled\n", args[0])
			return nil
		},
	}
}
