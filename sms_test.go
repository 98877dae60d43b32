package pitmaster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMessenger(t *testing.T, handler http.HandlerFunc) *Messenger {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := NewMessenger("5551234567", "testkey")
	m.URL = srv.URL
	m.Client = srv.Client()

	return m
}

func TestSendDeliversForm(t *testing.T) {
	var got struct {
		phone, message, key string
	}

	m := newTestMessenger(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got.phone = r.PostFormValue("phone")
		got.message = r.PostFormValue("message")
		got.key = r.PostFormValue("key")

		w.Write([]byte(`{"success": true}`))
	})

	sent, err := m.Send(context.Background(), AlertDone, "DONE - meat hit 203°F")
	require.NoError(t, err)
	assert.True(t, sent)

	assert.Equal(t, "5551234567", got.phone)
	assert.Equal(t, "BBQ: DONE - meat hit 203°F", got.message)
	assert.Equal(t, "testkey", got.key)
}

func TestSendCooldownPerAlertType(t *testing.T) {
	var calls int

	m := newTestMessenger(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++

		w.Write([]byte(`{"success": true}`))
	})

	clock := time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	sent, err := m.Send(context.Background(), AlertPitCrash, "crash")
	require.NoError(t, err)
	assert.True(t, sent)

	// same type inside the cooldown is dropped without an error
	clock = clock.Add(5 * time.Minute)

	sent, err = m.Send(context.Background(), AlertPitCrash, "crash again")
	require.NoError(t, err)
	assert.False(t, sent)

	// a different type has its own clock
	sent, err = m.Send(context.Background(), AlertDoneSoon, "almost")
	require.NoError(t, err)
	assert.True(t, sent)

	// and the original re-opens once the cooldown lapses
	clock = clock.Add(11 * time.Minute)

	sent, err = m.Send(context.Background(), AlertPitCrash, "crash again")
	require.NoError(t, err)
	assert.True(t, sent)

	assert.Equal(t, 3, calls)
}

func TestSendAPIErrorLeavesCooldownOpen(t *testing.T) {
	fail := true

	m := newTestMessenger(t, func(w http.ResponseWriter, _ *http.Request) {
		if fail {
			w.Write([]byte(`{"success": false, "error": "Out of quota"}`))

			return
		}

		w.Write([]byte(`{"success": true}`))
	})

	sent, err := m.Send(context.Background(), AlertDone, "done")
	assert.False(t, sent)
	require.ErrorContains(t, err, "Out of quota")

	// a failed send must not start the cooldown
	fail = false

	sent, err = m.Send(context.Background(), AlertDone, "done")
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestSendWithoutPhoneIsNoop(t *testing.T) {
	m := NewMessenger("", "testkey")

	sent, err := m.Send(context.Background(), AlertDone, "done")
	require.NoError(t, err)
	assert.False(t, sent)
}
