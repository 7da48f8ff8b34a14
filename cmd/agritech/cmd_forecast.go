package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/agritech/agriclient/internal/cache"
	"github.com/agritech/agriclient/internal/forecast"
)

var (
	forecastLocation string
	forecastCrop     string
	forecastDate     string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Show the weather forecast and crop outlook",
	Long: `Load the forecast for a location: today's weather, the coming week,
next week's dominant condition, suitable crops, and growing
recommendations for the selected crop.`,
	RunE: runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
	forecastCmd.Flags().StringVarP(&forecastLocation, "location", "l", "", "location id, e.g. kericho_kenya (default: first available)")
	forecastCmd.Flags().StringVarP(&forecastCrop, "crop", "c", "", "crop name, e.g. tea (default: first available)")
	forecastCmd.Flags().StringVarP(&forecastDate, "date", "d", "", "anchor date as YYYY-MM-DD (default: today)")
}

func runForecast(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	store := forecast.NewStore(a.gw, cache.New(a.gw, a.logger), a.logger)

	if forecastDate != "" {
		date, err := time.Parse("2006-01-02", forecastDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", forecastDate)
		}
		store.SetDate(date)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	go store.Run(ctx)

	state, err := awaitForecast(ctx, store)
	if err != nil {
		return err
	}
	printForecast(state)
	return nil
}

// awaitForecast drains store updates until a refresh for the requested
// selection has settled, applying the location/crop flags once the
// initial load has populated the choice lists.
func awaitForecast(ctx context.Context, store *forecast.Store) (forecast.State, error) {
	applied := false
	var last forecast.State

	for {
		select {
		case <-ctx.Done():
			return last, fmt.Errorf("timed out waiting for forecast data")
		case notice := <-store.Errors():
			fmt.Fprintln(os.Stderr, notice)
		case st := <-store.Updates():
			last = st

			if !applied && len(st.Locations) > 0 {
				applied = true
				if forecastLocation != "" {
					store.SelectLocation(forecastLocation)
					continue
				}
				if forecastCrop != "" {
					store.SelectCrop(forecastCrop)
					continue
				}
			}
			if applied && forecastCrop != "" && st.SelectedCrop != forecastCrop {
				store.SelectCrop(forecastCrop)
				continue
			}

			if forecastReady(st) {
				return st, nil
			}
		}
	}
}

func forecastReady(st forecast.State) bool {
	if st.IsLoading || st.TodaysWeather == nil || len(st.WeeklyWeather) == 0 {
		return false
	}
	if forecastLocation != "" && st.SelectedLocation != forecastLocation {
		return false
	}
	if forecastCrop != "" && st.SelectedCrop != forecastCrop {
		return false
	}
	return true
}

func printForecast(st forecast.State) {
	fmt.Printf("Forecast for %s\n\n", forecast.FormatLocation(st.SelectedLocation))

	if t := st.TodaysWeather; t != nil {
		fmt.Printf("Today: %s, %.1f°C (%.1f–%.1f), humidity %.0f%%, precip %.1fmm\n\n",
			forecast.FormatCondition(t.Conditions), t.Temp, t.TempMin, t.TempMax, t.Humidity, t.Precip)
	}

	if len(st.WeeklyWeather) > 0 {
		fmt.Println("This week:")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, r := range st.WeeklyWeather {
			fmt.Fprintf(w, "  %s\t%s\t%.1f–%.1f°C\t%.1fmm\n",
				r.Date.Format("Mon Jan 2"), forecast.FormatCondition(r.Conditions), r.TempMin, r.TempMax, r.Precip)
		}
		w.Flush()
		fmt.Println()
	}

	if st.NextWeekCondition != "" {
		fmt.Printf("Next week: mostly %s\n\n", st.NextWeekCondition)
	}

	if len(st.SuitableCrops) > 0 {
		fmt.Print("Suitable crops:")
		for _, c := range st.SuitableCrops {
			fmt.Printf(" %s", c.Name)
		}
		fmt.Print("\n\n")
	}

	if st.SelectedCrop != "" {
		fmt.Printf("Recommendations for %s:\n", st.SelectedCrop)
		if len(st.Recommendations) == 0 {
			fmt.Println("  (none)")
		}
		for _, r := range st.Recommendations {
			fmt.Printf("  - %s\n", r)
		}
	}
}
