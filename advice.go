package pitmaster

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// PitmasterWisdom is the domain knowledge given to the advisor as system
// context for every exchange.
const PitmasterWisdom = `Key BBQ knowledge:
- Target pit temp: 225-235°F for low and slow
- Brisket done at 195-205°F internal (probe slides in like butter)
- The stall hits around 150-170°F, can last 5+ hours
- The stall can be shortened by increasing cook temperature but it's a balancing act: too hot and it risks making the meat dry and tough; it can be done up to 325°F for pork shoulder but brisket is riskier and you should at most take temps up to 275°F if you have to for timing purposes
- Texas Crutch (wrapping in foil or paper at 150°F) powers through stall by trapping moisture but can soften the bark
- Inject with beef broth for moisture (about 1 oz per lb)
- Salt 12-24 h ahead (2-4 h minimum)
- Trim fat cap to 1/4", remove silverskin
- Brisket can take ~1.5 h/lb at 225°F, ~1.2 h/lb at 250°F, but varies per cook
- Smoking meat has three stages:
   Stage I (pre-stall): logistic growth,
   Stage II (stall): linear,
   Stage III (post-stall): logistic growth
   Stall when |alpha(t)| <= 0.03 (alpha = f'/f, units per hour) and 150-170°F internal
- Let rest in (faux) cambro 1-4 h
- Slice against the grain at the last minute`

const (
	advisorModel      = "claude-3-5-sonnet-20241022"
	advisorMaxTokens  = 300
	advisorTemp       = 0.2
	advisorMaxHistory = 20 // messages kept in the prompt
)

// messageAPI is the slice of the Anthropic SDK the advisor needs, narrowed
// so tests can fake it.
type messageAPI interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Advisor keeps a running conversation with Claude about the cook. Only the
// most recent messages are kept so the prompt stays a sane size over a
// 12-hour cook.
type Advisor struct {
	api     messageAPI
	history []anthropic.MessageParam
}

// NewAdvisor returns an Advisor authenticated with apiKey.
func NewAdvisor(apiKey string) *Advisor {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Advisor{api: &client.Messages}
}

// Start primes the conversation with the cook parameters and returns the
// opening advice.
func (a *Advisor) Start(ctx context.Context, meatType string, weight, targetPit, targetMeat float64) (string, error) {
	intro := fmt.Sprintf(`You're helping me smoke a %.0f lb %s.
Target pit: %.0f °F. Target meat: %.0f °F.

%s

I'll feed you temp updates and notes. Reply with brief, specific, casual advice.

Starting the cook now.`, weight, meatType, targetPit, targetMeat, PitmasterWisdom)

	return a.ask(ctx, intro)
}

// Ask sends a note from the pitmaster, annotated with the current summary,
// and returns the reply.
func (a *Advisor) Ask(ctx context.Context, note string, summary Summary) (string, error) {
	return a.ask(ctx, fmt.Sprintf("%s\n\nCurrent: %s", note, summary))
}

func (a *Advisor) ask(ctx context.Context, text string) (string, error) {
	a.history = append(a.history, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))

	window := a.history
	if len(window) > advisorMaxHistory {
		window = window[len(window)-advisorMaxHistory:]
	}

	msg, err := a.api.New(ctx, anthropic.MessageNewParams{
		Model:       advisorModel,
		MaxTokens:   advisorMaxTokens,
		Temperature: anthropic.Float(advisorTemp),
		Messages:    window,
	})
	if err != nil {
		return "", fmt.Errorf("advisor: %w", err)
	}

	var reply string

	for _, block := range msg.Content {
		reply += block.Text
	}

	a.history = append(a.history, anthropic.NewAssistantMessage(anthropic.NewTextBlock(reply)))

	return reply, nil
}
