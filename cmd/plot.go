package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokecraft/pitmaster"
)

func newPlotCmd() *cobra.Command {
	var (
		input      string
		output     string
		targetPit  float64
		targetMeat float64
	)

	cmd := cobra.Command{
		Use:   "plot",
		Short: "Graph a recorded cook with the fitted model overlaid",
		RunE: func(_ *cobra.Command, _ []string) error {
			fin, err := os.Open(input)
			if err != nil {
				return err
			}
			defer fin.Close()

			var records []pitmaster.Record

			for s := bufio.NewScanner(fin); s.Scan(); {
				var record pitmaster.Record

				if err := json.Unmarshal(s.Bytes(), &record); err != nil {
					return err
				}

				records = append(records, record)
			}

			if len(records) == 0 {
				return fmt.Errorf("no records in %s", input)
			}

			// Replay the log so the final fit and its ETAs can be drawn.
			cook := pitmaster.NewCook(pitmaster.CookConfig{
				TargetMeat: targetMeat,
				Start:      records[0].Time,
			})

			for _, record := range records {
				cook.ProcessSample(record.Sample())
			}

			options := pitmaster.PlotterOptions{
				Title:      records[0].Time.Format(time.ANSIC),
				TargetPit:  targetPit,
				TargetMeat: targetMeat,
				Data:       records,
			}

			if pred, ok := cook.Predictions(); ok {
				options.Curve = &pred
				options.Markers = append(options.Markers, pred.WrapETA.Sub(records[0].Time))

				if pred.HasFinish() {
					options.Markers = append(options.Markers, pred.FinishETA.Sub(records[0].Time))
				}
			}

			p, err := pitmaster.NewPlotter(&options).Plot()
			if err != nil {
				return err
			}

			return p.Save(800, 300, output)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input JSON cook log")
	cmd.Flags().StringVarP(&output, "output", "o", "pitmaster.png", "output file")
	cmd.Flags().Float64Var(&targetPit, "target-pit", 225, "target pit temperature °F")
	cmd.Flags().Float64Var(&targetMeat, "target-meat", 203, "target meat temperature °F")

	if err := cmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}

	return &cmd
}
