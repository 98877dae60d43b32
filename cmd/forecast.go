package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"endobit.io/table"

	"github.com/smokecraft/pitmaster"
)

func newForecastCmd() *cobra.Command { //nolint:gocognit
	var (
		input      string
		actualTime string
		targetMeat float64
	)

	cmd := cobra.Command{
		Use:   "forecast",
		Short: "Show ETA forecasts from a recorded cook as if it were real-time",
		Long: `The forecast command replays a JSON cook log through the stall detector and
the logistic model and shows what the predictions would have been at each
point in time. Pass the actual finish time to validate prediction accuracy.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			fin, err := os.Open(input)
			if err != nil {
				return err
			}
			defer fin.Close()

			var actualFinish *time.Time

			if actualTime != "" {
				parsed, err := time.Parse(time.RFC3339, actualTime)
				if err != nil {
					return fmt.Errorf("invalid actual time format (use RFC3339): %w", err)
				}

				actualFinish = &parsed
			}

			var records []pitmaster.Record

			scanner := bufio.NewScanner(fin)
			for scanner.Scan() {
				var record pitmaster.Record

				if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
					continue // skip invalid entries
				}

				records = append(records, record)
			}

			if err := scanner.Err(); err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Println("No valid probe data found in input file")

				return nil
			}

			fmt.Printf("Forecasting predictions from %d entries\n", len(records))

			if actualFinish != nil {
				fmt.Printf("Actual finish time: %s\n", actualFinish.Format("15:04:05"))
			}

			fmt.Println()

			cook := pitmaster.NewCook(pitmaster.CookConfig{
				TargetMeat: targetMeat,
				Start:      records[0].Time,
			})

			type row struct {
				Time     string
				Delta    string `table:"\n(s)"`
				Pit      string `table:"\n(°F)"`
				Meat     string `table:"\n(°F)"`
				Stalled  string `table:",omitempty"`
				Wrap     string `table:",omitempty"`
				Finish   string `table:",omitempty"`
				RMSE     string `table:"\n(°F),omitempty"`
				Actual   string `table:",omitempty"`
				Accuracy string `table:",omitempty"`
			}

			output := table.New()

			for i := range records {
				record := &records[i]

				var deltaTime string

				if i > 0 {
					deltaTime = fmt.Sprintf("%.0f", record.Time.Sub(records[i-1].Time).Seconds())
				} else {
					deltaTime = "0"
				}

				cook.ProcessSample(record.Sample())

				r := row{
					Time:  record.Time.Format(time.TimeOnly),
					Delta: deltaTime,
					Pit:   fmt.Sprintf("%.0f", record.Pit),
					Meat:  fmt.Sprintf("%.0f", record.Meat),
				}

				if cook.Stalled() {
					r.Stalled = "stall"
				}

				pred, ok := cook.Predictions()
				if ok { //nolint:nestif
					r.Wrap = pred.WrapETA.Format(time.TimeOnly)
					r.RMSE = fmt.Sprintf("%.1f", pred.RMSE)

					if pred.HasFinish() {
						r.Finish = pred.FinishETA.Format(time.TimeOnly)

						if actualFinish != nil {
							actualRemaining := actualFinish.Sub(record.Time)
							if actualRemaining > 0 {
								r.Actual = formatDuration(actualRemaining)

								predicted := pred.FinishETA.Sub(record.Time)
								if predicted > 0 {
									errorPercent := (predicted.Seconds() - actualRemaining.Seconds()) /
										actualRemaining.Seconds() * 100
									r.Accuracy = fmt.Sprintf("%+.1f%%", errorPercent)
								}
							} else {
								r.Actual = "DONE"
								r.Accuracy = "DONE"
							}
						}
					}
				}

				output.Write(r)

				if ok && actualFinish != nil && pred.HasFinish() && i > 0 && (i%10 == 0 || i == len(records)-1) {
					output.Annotate(fmt.Sprintf(
						"    -> Predicted finish: %s, Actual remaining: %s, RMSE: %.1f°F\n",
						pred.FinishETA.Format(time.TimeOnly),
						formatDuration(actualFinish.Sub(record.Time)),
						pred.RMSE))
				}
			}

			_ = output.Flush()

			fmt.Println()

			if actualFinish != nil {
				first := records[0]
				last := records[len(records)-1]

				fmt.Printf("Summary:\n")
				fmt.Printf("  Total cook time: %s\n", formatDuration(actualFinish.Sub(first.Time)))
				fmt.Printf("  Monitored time: %s\n", formatDuration(last.Time.Sub(first.Time)))
				fmt.Printf("  Temperature range: %.0f°F → %.0f°F (target: %.0f°F)\n",
					first.Meat, last.Meat, targetMeat)

				if pred, ok := cook.Predictions(); ok && pred.HasFinish() {
					actualRemaining := actualFinish.Sub(last.Time)
					predicted := pred.FinishETA.Sub(last.Time)

					if actualRemaining > 0 && predicted > 0 {
						errorPercent := (predicted.Seconds() - actualRemaining.Seconds()) /
							actualRemaining.Seconds() * 100
						fmt.Printf("  Final prediction accuracy: %+.1f%% error\n", errorPercent)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input JSON cook log")
	cmd.Flags().StringVar(&actualTime, "actual", "",
		"actual finish time (RFC3339 format, e.g., 2025-07-05T20:49:45-04:00)")
	cmd.Flags().Float64Var(&targetMeat, "target-meat", 203, "target meat temperature °F")

	if err := cmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}

	return &cmd
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}

	return fmt.Sprintf("%dm", minutes)
}
