package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agritech/agriclient/internal/forecast"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List the available locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		locations, err := a.gw.Locations(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch locations: %w", err)
		}
		for _, l := range locations {
			fmt.Printf("%-20s %s\n", l, forecast.FormatLocation(l))
		}
		return nil
	},
}

var cropsCmd = &cobra.Command{
	Use:   "crops",
	Short: "List the known crops and their growing thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		crops, err := a.gw.Crops(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch crops: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CROP\tTEMP °C\tPRECIP mm\tHUMIDITY %")
		for _, c := range crops {
			fmt.Fprintf(w, "%s\t%.0f–%.0f\t%.0f–%.0f\t%.0f–%.0f\n",
				c.Name, c.MinTemp, c.MaxTemp, c.MinPrecip, c.MaxPrecip, c.MinHumidity, c.MaxHumidity)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(locationsCmd, cropsCmd)
}
