package channels

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// LINEMaxTextLength is the Messaging API limit for a text message, in runes.
const LINEMaxTextLength = 5000

type LINEOptions struct {
	AccessToken string
	Endpoint    string       // API base override; empty uses api.line.me
	HTTPClient  *http.Client // carries the send timeout
}

// LINEChannel is the outbound LINE gateway backed by the Messaging API.
type LINEChannel struct {
	api *messaging_api.MessagingApiAPI
}

func NewLINEChannel(opts LINEOptions) (*LINEChannel, error) {
	if opts.AccessToken == "" {
		return nil, errors.New("line channel access token is required")
	}

	var apiOpts []messaging_api.MessagingApiAPIOption
	if opts.Endpoint != "" {
		apiOpts = append(apiOpts, messaging_api.WithEndpoint(opts.Endpoint))
	}
	if opts.HTTPClient != nil {
		apiOpts = append(apiOpts, messaging_api.WithHTTPClient(opts.HTTPClient))
	}

	api, err := messaging_api.NewMessagingApiAPI(opts.AccessToken, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating line messaging client: %w", err)
	}
	return &LINEChannel{api: api}, nil
}

func (c *LINEChannel) Name() string { return "line" }

// ReplyMessage answers a webhook event through its one-shot reply token.
func (c *LINEChannel) ReplyMessage(ctx context.Context, replyToken, text string) error {
	if replyToken == "" {
		return errors.New("line reply: empty reply token")
	}
	_, err := c.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   textMessages(text),
	})
	if err != nil {
		return fmt.Errorf("line reply: %w", err)
	}
	return nil
}

// PushMessage sends text to a user, group or room id. Each call carries a
// fresh retry key, so LINE never delivers the same push twice.
func (c *LINEChannel) PushMessage(ctx context.Context, to, text string) error {
	if to == "" {
		return errors.New("line push: empty destination")
	}
	_, err := c.api.WithContext(ctx).PushMessage(&messaging_api.PushMessageRequest{
		To:       to,
		Messages: textMessages(text),
	}, uuid.New().String())
	if err != nil {
		return fmt.Errorf("line push to %s: %w", to, err)
	}
	return nil
}

func textMessages(text string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		messaging_api.TextMessage{Text: truncateRunes(text, LINEMaxTextLength)},
	}
}

// truncateRunes cuts s to at most n runes, ending with an ellipsis when cut.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
