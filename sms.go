package pitmaster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultSMSCooldown is the minimum spacing between SMS messages of the same
// alert type.
const DefaultSMSCooldown = 15 * time.Minute

const defaultTextBeltURL = "https://textbelt.com/text"

// Messenger sends SMS alerts through the TextBelt HTTP API. A Messenger with
// an empty phone number silently discards everything, so callers never need
// a nil check. Each alert type has an independent cooldown to keep a flapping
// condition from spamming the phone.
type Messenger struct {
	Phone    string
	Key      string // TextBelt API key; "textbelt" gets the free quota
	Cooldown time.Duration
	URL      string
	Client   *http.Client

	lastSent map[AlertType]time.Time
	now      func() time.Time
}

// NewMessenger returns a Messenger for phone using key. An empty phone
// disables sending.
func NewMessenger(phone, key string) *Messenger {
	return &Messenger{
		Phone:    phone,
		Key:      key,
		Cooldown: DefaultSMSCooldown,
		URL:      defaultTextBeltURL,
		Client:   http.DefaultClient,
		lastSent: make(map[AlertType]time.Time),
		now:      time.Now,
	}
}

type textBeltResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Send delivers message, prefixed "BBQ: ", unless alertType is still inside
// its cooldown or no phone is configured. It reports whether a message went
// out; delivery failures are returned for logging but are never fatal to the
// cook loop.
func (m *Messenger) Send(ctx context.Context, alertType AlertType, message string) (bool, error) {
	if m.Phone == "" {
		return false, nil
	}

	if last, ok := m.lastSent[alertType]; ok && m.now().Sub(last) < m.Cooldown {
		return false, nil
	}

	form := url.Values{
		"phone":   {m.Phone},
		"message": {"BBQ: " + message},
		"key":     {m.Key},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.Client.Do(req)
	if err != nil {
		return false, err
	}

	defer resp.Body.Close()

	var result textBeltResponse

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode textbelt response: %w", err)
	}

	if !result.Success {
		return false, fmt.Errorf("textbelt: %s", result.Error)
	}

	m.lastSent[alertType] = m.now()

	return true, nil
}
