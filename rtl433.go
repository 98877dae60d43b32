package pitmaster

import (
	"bufio"
	"context"
	"encoding/json"
	"os/exec"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Sensor models recognized in the rtl_433 stream. The TP12 is the dual-probe
// pit/meat thermometer; the LaCrosse unit is the outdoor ambient sensor.
const (
	modelThermoProTP12 = "Thermopro-TP12"
	modelLaCrosseTX141 = "LaCrosse-TX141Bv3"
)

const rtl433TimeLayout = "2006-01-02 15:04:05"

// Feed delivers decoded sensor readings. Probe samples and ambient readings
// arrive on separate channels since they come from different transmitters at
// different cadences.
type Feed struct {
	Samples chan Sample
	Ambient chan float64
}

// NewFeed returns a feed with buffered channels so a slow consumer does not
// stall decoding.
func NewFeed() *Feed {
	return &Feed{
		Samples: make(chan Sample, 16),
		Ambient: make(chan float64, 4),
	}
}

// rtl433Message is the subset of rtl_433's JSON output this module reads.
type rtl433Message struct {
	Model        string  `json:"model"`
	Time         string  `json:"time"`
	Temperature1 float64 `json:"temperature_1_C"` // TP12 pit probe
	Temperature2 float64 `json:"temperature_2_C"` // TP12 meat probe
	TemperatureC float64 `json:"temperature_C"`   // single-sensor models
}

// RunProcess spawns rtl_433 emitting JSON on stdout and feeds decoded
// readings until the context is canceled or the process exits. Lines that are
// not valid JSON or come from unrecognized sensors are skipped.
func (f *Feed) RunProcess(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, path, "-F", "json")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		f.dispatch(ctx, scanner.Bytes())
	}

	if err := cmd.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	return ctx.Err()
}

// SubscribeMQTT consumes rtl_433's MQTT event stream (rtl_433 -F mqtt) from
// broker on topic and feeds decoded readings until the context is canceled.
func (f *Feed) SubscribeMQTT(ctx context.Context, broker, topic string) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	defer client.Disconnect(0)

	token := client.Subscribe(topic, 1, func(_ mqtt.Client, m mqtt.Message) {
		f.dispatch(ctx, m.Payload())
	})

	if token.Wait(); token.Error() != nil {
		return token.Error()
	}

	<-ctx.Done()

	return ctx.Err()
}

func (f *Feed) dispatch(ctx context.Context, data []byte) {
	sample, ambient, kind := decodeRTL433(data)

	switch kind {
	case readingProbe:
		select {
		case f.Samples <- sample:
		case <-ctx.Done():
		}
	case readingAmbient:
		select {
		case f.Ambient <- ambient:
		case <-ctx.Done():
		}
	case readingNone:
	}
}

type readingKind int

const (
	readingNone readingKind = iota
	readingProbe
	readingAmbient
)

// decodeRTL433 parses one rtl_433 JSON message. Messages from unrecognized
// models, and malformed lines, decode as readingNone.
func decodeRTL433(data []byte) (Sample, float64, readingKind) {
	var msg rtl433Message

	if err := json.Unmarshal(data, &msg); err != nil {
		return Sample{}, 0, readingNone
	}

	switch msg.Model {
	case modelThermoProTP12:
		ts, err := time.ParseInLocation(rtl433TimeLayout, msg.Time, time.Local)
		if err != nil {
			return Sample{}, 0, readingNone
		}

		return Sample{
			Time: ts,
			Pit:  celsiusToFahrenheit(msg.Temperature1),
			Meat: celsiusToFahrenheit(msg.Temperature2),
		}, 0, readingProbe

	case modelLaCrosseTX141:
		return Sample{}, celsiusToFahrenheit(msg.TemperatureC), readingAmbient
	}

	return Sample{}, 0, readingNone
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}
