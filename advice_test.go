package pitmaster

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageAPI struct {
	calls []anthropic.MessageNewParams
	reply []string
	err   error
}

func (f *fakeMessageAPI) New(_ context.Context, params anthropic.MessageNewParams,
	_ ...option.RequestOption,
) (*anthropic.Message, error) {
	f.calls = append(f.calls, params)

	if f.err != nil {
		return nil, f.err
	}

	blocks := make([]anthropic.ContentBlockUnion, len(f.reply))
	for i, text := range f.reply {
		blocks[i] = anthropic.ContentBlockUnion{Text: text}
	}

	return &anthropic.Message{Content: blocks}, nil
}

func TestAdvisorStart(t *testing.T) {
	api := &fakeMessageAPI{reply: []string{"Fire looks good, settle in."}}
	a := &Advisor{api: api}

	reply, err := a.Start(context.Background(), "brisket", 12, 225, 203)
	require.NoError(t, err)
	assert.Equal(t, "Fire looks good, settle in.", reply)

	require.Len(t, api.calls, 1)
	call := api.calls[0]

	assert.EqualValues(t, advisorModel, call.Model)
	assert.EqualValues(t, advisorMaxTokens, call.MaxTokens)

	require.Len(t, call.Messages, 1)
	prompt := call.Messages[0].Content[0].OfText.Text
	assert.Contains(t, prompt, "12 lb brisket")
	assert.Contains(t, prompt, "Target pit: 225")
	assert.Contains(t, prompt, "Texas Crutch")
}

func TestAdvisorAskIncludesSummary(t *testing.T) {
	api := &fakeMessageAPI{reply: []string{"Wrap it."}}
	a := &Advisor{api: api}

	summary := Summary{
		HasData:  true,
		Pit:      225,
		Meat:     152,
		MeatRate: 1.1,
		Window:   10 * time.Minute,
	}

	reply, err := a.Ask(context.Background(), "stall is dragging, wrap?", summary)
	require.NoError(t, err)
	assert.Equal(t, "Wrap it.", reply)

	prompt := api.calls[0].Messages[0].Content[0].OfText.Text
	assert.Contains(t, prompt, "stall is dragging, wrap?")
	assert.Contains(t, prompt, "Current: Temps: pit 225°F")
}

func TestAdvisorKeepsConversation(t *testing.T) {
	api := &fakeMessageAPI{reply: []string{"ok"}}
	a := &Advisor{api: api}

	_, err := a.Ask(context.Background(), "first", Summary{})
	require.NoError(t, err)

	_, err = a.Ask(context.Background(), "second", Summary{})
	require.NoError(t, err)

	// the second call carries the first exchange plus the new question
	require.Len(t, api.calls, 2)
	assert.Len(t, api.calls[1].Messages, 3)
}

func TestAdvisorWindowsHistory(t *testing.T) {
	api := &fakeMessageAPI{reply: []string{"ok"}}
	a := &Advisor{api: api}

	for i := 0; i < 30; i++ {
		_, err := a.Ask(context.Background(), fmt.Sprintf("update %d", i), Summary{})
		require.NoError(t, err)
	}

	last := api.calls[len(api.calls)-1]
	assert.Len(t, last.Messages, advisorMaxHistory)

	// the newest question is always the final message in the window
	newest := last.Messages[len(last.Messages)-1]
	assert.Contains(t, newest.Content[0].OfText.Text, "update 29")
}

func TestAdvisorConcatenatesBlocks(t *testing.T) {
	api := &fakeMessageAPI{reply: []string{"part one, ", "part two"}}
	a := &Advisor{api: api}

	reply, err := a.Ask(context.Background(), "status?", Summary{})
	require.NoError(t, err)
	assert.Equal(t, "part one, part two", reply)
}

func TestAdvisorPropagatesAPIError(t *testing.T) {
	api := &fakeMessageAPI{err: errors.New("overloaded")}
	a := &Advisor{api: api}

	_, err := a.Ask(context.Background(), "anyone home?", Summary{})
	require.ErrorContains(t, err, "overloaded")
}
