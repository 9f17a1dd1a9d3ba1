package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"holidaze/internal/availability"
	"holidaze/internal/booking"
	"holidaze/internal/calendar"
	"holidaze/internal/format"
	"holidaze/internal/holidazeapi"
	"holidaze/internal/models"
	"holidaze/internal/scope"
	"holidaze/internal/search"

	"github.com/spf13/cobra"
)

func printVenues(w io.Writer, venues []models.Venue) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tPRICE\tGUESTS")
	for i := range venues {
		v := &venues[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", v.ID, v.Title(), v.Location.String(), format.Currency(v.Price, "USD"), v.MaxGuests)
	}
	_ = tw.Flush()
}

func newVenuesCmd(get func() *app) *cobra.Command {
	var (
		query  string
		filter string
		pages  int
		limit  int
		sortBy string
	)
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "List venues",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if limit <= 0 {
				limit = a.cfg.Booking.PageSize
			}
			pager := search.NewPager(limit)
			for i := 0; i < pages && pager.HasMore(); i++ {
				page, size := pager.Next()
				opts := holidazeapi.ListOptions{Page: page, Limit: size, Sort: sortBy}
				var (
					venues []models.Venue
					meta   models.PageMeta
					err    error
				)
				if query != "" {
					venues, meta, err = a.client.SearchVenues(cmd.Context(), query, opts)
				} else {
					venues, meta, err = a.client.ListVenues(cmd.Context(), opts)
				}
				if err != nil {
					return err
				}
				pager.Add(venues, meta)
			}

			venues := search.Filter(pager.Venues(), filter)
			if len(venues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No venues found.")
				return nil
			}
			printVenues(cmd.OutOrStdout(), venues)
			if pager.HasMore() {
				fmt.Fprintf(cmd.OutOrStdout(), "\nMore venues available; use --pages %d to load more.\n", pages+1)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "search the API by name or description")
	cmd.Flags().StringVar(&filter, "filter", "", "filter loaded venues by name, description or location")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	cmd.Flags().IntVar(&limit, "limit", 0, "venues per page (default booking.page_size)")
	cmd.Flags().StringVar(&sortBy, "sort", "created", "sort field")
	return cmd
}

func newVenueCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "venue <id>",
		Short: "Show a venue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := get().client.GetVenue(cmd.Context(), args[0], holidazeapi.Include{Owner: true})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n%s\n\n", v.Title(), v.Location.String())
			if v.Description != "" {
				fmt.Fprintf(w, "%s\n\n", v.Description)
			}
			fmt.Fprintf(w, "Price per night: %s\n", format.Currency(v.Price, "USD"))
			fmt.Fprintf(w, "Max guests: %d\n", v.MaxGuests)
			fmt.Fprintf(w, "Rating: %.1f\n", v.Rating)
			var amenities []string
			for name, ok := range map[string]bool{"wifi": v.Meta.Wifi, "parking": v.Meta.Parking, "breakfast": v.Meta.Breakfast, "pets": v.Meta.Pets} {
				if ok {
					amenities = append(amenities, name)
				}
			}
			if len(amenities) > 0 {
				slices.Sort(amenities)
				fmt.Fprintf(w, "Amenities: %s\n", strings.Join(amenities, ", "))
			}
			if v.Owner != nil {
				fmt.Fprintf(w, "Host: %s\n", v.Owner.Name)
			}
			return nil
		},
	}
}

// newSearchCmd reads queries line by line from stdin and searches once
// typing settles.
func newSearchCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Search venues interactively, one query per line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			out := cmd.OutOrStdout()

			var (
				mu      sync.Mutex
				last    string
				printed string
			)
			run := func(ctx context.Context, q string) {
				venues, _, err := a.client.SearchVenues(ctx, q, holidazeapi.ListOptions{Limit: a.cfg.Booking.PageSize})
				if ctx.Err() != nil {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				printed = q
				if err != nil {
					fmt.Fprintf(out, "search %q failed: %v\n", q, err)
					return
				}
				fmt.Fprintf(out, "Results for %q:\n", q)
				printVenues(out, venues)
			}

			sc := scope.New(cmd.Context())
			d := search.NewDebouncer(sc, a.cfg.SearchDebounce(), run)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				q := strings.TrimSpace(scanner.Text())
				if q == "" {
					continue
				}
				mu.Lock()
				last = q
				mu.Unlock()
				d.Trigger(q)
			}
			d.Stop()
			sc.Close()

			mu.Lock()
			pending := last != "" && last != printed
			mu.Unlock()
			if pending && cmd.Context().Err() == nil {
				run(cmd.Context(), last)
			}
			return scanner.Err()
		},
	}
}

// bookedInMonth lists the booked stays touching the month, earliest first.
func bookedInMonth(set *availability.Set, year int, month time.Month) []string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := models.AddDays(first.AddDate(0, 1, 0), -1)
	ivs := set.Intervals()
	slices.SortFunc(ivs, func(a, b availability.Interval) int { return a.Start.Compare(b.Start) })

	var stays []string
	for _, iv := range ivs {
		if models.Day(iv.End).Before(first) || models.Day(iv.Start).After(last) {
			continue
		}
		stays = append(stays, format.DateRange(iv.Start, iv.End))
	}
	return stays
}

func newCalendarCmd(get func() *app) *cobra.Command {
	var (
		month    string
		checkOut bool
	)
	cmd := &cobra.Command{
		Use:   "calendar <venue-id>",
		Short: "Show a venue's availability for a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			v, err := a.client.GetVenue(cmd.Context(), args[0], holidazeapi.Include{})
			if err != nil {
				return err
			}
			set, err := availability.Load(cmd.Context(), a.client, v.ID, a.logger)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: could not load bookings, showing every date as free")
			}
			form := booking.NewForm(*v, set, a.today())

			year, mon := form.Today().Year(), form.Today().Month()
			if month != "" {
				if year, mon, err = calendar.ParseMonth(month); err != nil {
					return err
				}
			}
			picker := booking.PickCheckIn
			if checkOut {
				picker = booking.PickCheckOut
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", v.Title())
			if err := calendar.Render(cmd.OutOrStdout(), calendar.Month(year, mon, form, picker)); err != nil {
				return err
			}
			if stays := bookedInMonth(set, year, mon); len(stays) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nBooked: %s\n", strings.Join(stays, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show as YYYY-MM (default current month)")
	cmd.Flags().BoolVar(&checkOut, "check-out", false, "show the check-out picker view")
	return cmd
}
