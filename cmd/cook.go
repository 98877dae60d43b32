package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"endobit.io/app/log"

	"github.com/smokecraft/pitmaster"
)

func newCookCmd() *cobra.Command {
	vpr := viper.New()

	cmd := cobra.Command{
		Use:   "cook",
		Short: "Monitor a cook in real time",
		Long: `The cook command reads the rtl_433 sensor feed, tracks the stall, fits the
logistic finish model, and raises SMS alerts. Anything typed on stdin is sent
to the advisor along with the current temperatures. Examples:

  just added 10 briquettes
  wrapped the brisket
  windy AF today`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runCook(ctx, vpr)
		},
	}

	flags := cmd.Flags()
	flags.String("meat", "brisket", "meat type")
	flags.Float64("weight", 12, "weight in lbs")
	flags.Float64("target-pit", 225, "target pit temperature °F")
	flags.Float64("target-meat", 203, "target meat temperature °F")
	flags.String("phone", "", "phone number for SMS alerts (blank to skip)")
	flags.Duration("cadence", pitmaster.DefaultCadence, "sensor reporting cadence")
	flags.Duration("sms-cooldown", pitmaster.DefaultSMSCooldown, "minimum spacing between SMS of one type")
	flags.String("source", "process", "sensor source: process or mqtt")
	flags.String("rtl433", "rtl_433", "path to the rtl_433 binary (process source)")
	flags.String("broker", "tcp://localhost:1883", "MQTT broker (mqtt source)")
	flags.String("topic", "rtl_433/+/events", "MQTT topic (mqtt source)")
	flags.String("output", "", "append the cook log to file")

	vpr.SetEnvPrefix("BBQ")
	vpr.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vpr.AutomaticEnv()
	_ = vpr.BindPFlags(flags)
	_ = vpr.BindEnv("textbelt-key", "TXTBELT_KEY")
	_ = vpr.BindEnv("anthropic-api-key", "ANTHROPIC_API_KEY")

	return &cmd
}

func runCook(ctx context.Context, vpr *viper.Viper) error {
	logger := slog.Default()

	phone := vpr.GetString("phone")
	if phone != "" && !strings.HasPrefix(phone, "+") {
		phone = "+1" + phone // assume US
	}

	cook := pitmaster.NewCook(pitmaster.CookConfig{
		MeatType:   vpr.GetString("meat"),
		Weight:     vpr.GetFloat64("weight"),
		TargetPit:  vpr.GetFloat64("target-pit"),
		TargetMeat: vpr.GetFloat64("target-meat"),
		Cadence:    vpr.GetDuration("cadence"),
	})

	key := vpr.GetString("textbelt-key")
	if key == "" {
		key = "textbelt"
	}

	messenger := pitmaster.NewMessenger(phone, key)
	messenger.Cooldown = vpr.GetDuration("sms-cooldown")

	var advisor *pitmaster.Advisor

	if apiKey := vpr.GetString("anthropic-api-key"); apiKey != "" {
		advisor = pitmaster.NewAdvisor(apiKey)

		opening, err := advisor.Start(ctx, cook.MeatType, cook.Weight, cook.TargetPit, cook.TargetMeat)
		if err != nil {
			logger.Warn("advisor unavailable", "error", err)

			advisor = nil
		} else {
			fmt.Printf("\n%s\n\n", opening)
		}
	} else {
		logger.Info("no ANTHROPIC_API_KEY, advice disabled")
	}

	var output io.Writer

	if path := vpr.GetString("output"); path != "" {
		fout, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}

		defer fout.Close()

		output = fout
	}

	feed := pitmaster.NewFeed()

	go func() {
		var err error

		switch vpr.GetString("source") {
		case "mqtt":
			err = feed.SubscribeMQTT(ctx, vpr.GetString("broker"), vpr.GetString("topic"))
		default:
			err = feed.RunProcess(ctx, vpr.GetString("rtl433"))
		}

		if err != nil && ctx.Err() == nil {
			logger.Error("sensor feed died", "error", err)
		}
	}()

	m := monitor{
		Logger:    logger,
		Cook:      cook,
		Messenger: messenger,
		Advisor:   advisor,
		Output:    output,
	}

	return m.Run(ctx, feed)
}

type monitor struct {
	Logger    *slog.Logger
	Cook      *pitmaster.Cook
	Messenger *pitmaster.Messenger
	Advisor   *pitmaster.Advisor
	Output    io.Writer
}

// Run drains the sensor feed and stdin notes until the context is canceled.
// It is the single consumer of all cook state.
func (m *monitor) Run(ctx context.Context, feed *pitmaster.Feed) error {
	notes := make(chan string)

	go readNotes(ctx, notes)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Logger.Info("interrupted, aborting")

			return ctx.Err()

		case sample := <-feed.Samples:
			m.processSample(ctx, sample)

		case ambient := <-feed.Ambient:
			m.Cook.SetAmbient(ambient)

		case note := <-notes:
			if strings.EqualFold(note, "quit") {
				return nil
			}

			m.handleNote(ctx, note)

		case <-ticker.C:
			if m.Cook.Stale(time.Now()) {
				m.Logger.Warn("no temp data for 5 min, check the sensor")
			}
		}
	}
}

func (m *monitor) processSample(ctx context.Context, sample pitmaster.Sample) {
	alerts := m.Cook.ProcessSample(sample)

	attrs := []slog.Attr{
		log.Format("%.0f°F", "pit", sample.Pit),
		log.Format("%.0f°F", "meat", sample.Meat),
		log.Format("%.1fh", "elapsed", m.Cook.Elapsed(sample.Time).Hours()),
	}

	if ambient, ok := m.Cook.Ambient(); ok {
		attrs = append(attrs, log.Format("%.0f°F", "outside", ambient))
	}

	if m.Cook.Stalled() {
		attrs = append(attrs, slog.Bool("stalled", true))
	}

	if pred, ok := m.Cook.Predictions(); ok {
		attrs = append(attrs, slog.String("eta_wrap", pred.WrapETA.Format(time.TimeOnly)))

		if pred.HasFinish() {
			attrs = append(attrs,
				slog.String("eta_finish", pred.FinishETA.Format(time.TimeOnly)),
				log.Format("%.1f°F", "rmse", pred.RMSE))
		}
	}

	m.Logger.LogAttrs(ctx, slog.LevelInfo, "", attrs...)

	for _, alert := range alerts {
		m.deliver(ctx, alert)
	}

	if m.Output != nil {
		record := pitmaster.Record{Time: sample.Time, Pit: sample.Pit, Meat: sample.Meat}
		if ambient, ok := m.Cook.Ambient(); ok {
			record.Ambient = ambient
		}

		b, err := json.Marshal(record)
		if err != nil {
			m.Logger.Error("cannot marshal", "error", err)

			return
		}

		_, _ = m.Output.Write(b)
		_, _ = m.Output.Write([]byte("\n"))
	}
}

func (m *monitor) deliver(ctx context.Context, alert pitmaster.Alert) {
	sent, err := m.Messenger.Send(ctx, alert.Type, alert.Message)

	switch {
	case err != nil:
		m.Logger.Error("sms failed", "type", string(alert.Type), "error", err)
	case sent:
		m.Logger.Info("sms sent", "message", alert.Message)
	}

	if alert.AskAdvice {
		m.handleNote(ctx, "pit temp crashed, what to do?")
	}
}

func (m *monitor) handleNote(ctx context.Context, note string) {
	if m.Advisor == nil {
		return
	}

	reply, err := m.Advisor.Ask(ctx, note, m.Cook.Summary(time.Now()))
	if err != nil {
		m.Logger.Warn("advisor error", "error", err)

		return
	}

	fmt.Printf("\n%s\n\n", reply)
}

func readNotes(ctx context.Context, notes chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		note := strings.TrimSpace(scanner.Text())
		if note == "" {
			continue
		}

		select {
		case notes <- note:
		case <-ctx.Done():
			return
		}
	}
}
