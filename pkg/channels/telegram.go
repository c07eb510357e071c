package channels

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// TelegramMaxTextLength is the Bot API limit for sendMessage text, in runes.
const TelegramMaxTextLength = 4096

type TelegramOptions struct {
	Token     string
	APIServer string // Bot API server override; empty uses api.telegram.org
	Proxy     string
	Timeout   time.Duration
}

// TelegramChannel is the outbound Telegram gateway backed by telego.
type TelegramChannel struct {
	bot *telego.Bot
}

func NewTelegramChannel(opts TelegramOptions) (*TelegramChannel, error) {
	if opts.Token == "" {
		return nil, errors.New("telegram bot token is required")
	}

	client := &http.Client{Timeout: opts.Timeout}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram proxy URL %q: %w", opts.Proxy, err)
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	botOpts := []telego.BotOption{
		telego.WithHTTPClient(client),
		telego.WithDiscardLogger(),
	}
	if opts.APIServer != "" {
		botOpts = append(botOpts, telego.WithAPIServer(opts.APIServer))
	}

	bot, err := telego.NewBot(opts.Token, botOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &TelegramChannel{bot: bot}, nil
}

func (c *TelegramChannel) Name() string { return "telegram" }

func (c *TelegramChannel) SendMessage(ctx context.Context, chatID, text string) error {
	id, err := ParseChatID(chatID)
	if err != nil {
		return err
	}
	if _, err := c.bot.SendMessage(ctx, tu.Message(id, truncateRunes(text, TelegramMaxTextLength))); err != nil {
		return fmt.Errorf("telegram send to %s: %w", chatID, err)
	}
	return nil
}

// ParseChatID accepts a numeric chat id (negative for groups) or an
// @channelusername.
func ParseChatID(s string) (telego.ChatID, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "@") && len(s) > 1 {
		return tu.Username(s), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n == 0 {
		return telego.ChatID{}, fmt.Errorf("invalid telegram chat id %q", s)
	}
	return tu.ID(n), nil
}
