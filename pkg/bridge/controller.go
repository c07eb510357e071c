// Package bridge relays text messages between LINE and Telegram.
//
// LINE deliveries are authenticated, classified and either update the
// destination binding (join) or are forwarded to the configured Telegram
// chat (message). Telegram deliveries are forwarded to whatever LINE
// conversation the binding currently names. Delivery is at-most-once:
// failures are logged and counted, never retried, and never surfaced to the
// webhook caller.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/tinyland-inc/picobridge/pkg/bus"
	"github.com/tinyland-inc/picobridge/pkg/channels"
	"github.com/tinyland-inc/picobridge/pkg/logger"
	"github.com/tinyland-inc/picobridge/pkg/state"
)

// Outcome is the result of handling one classified event.
type Outcome string

const (
	OutcomeForwarded     Outcome = "forwarded"
	OutcomeBound         Outcome = "bound"
	OutcomeIgnored       Outcome = "ignored"
	OutcomeNotAllowed    Outcome = "not_allowed"
	OutcomeNoDestination Outcome = "no_destination"
	OutcomeSendFailed    Outcome = "send_failed"
	OutcomeStoreFailed   Outcome = "store_failed"
)

type Options struct {
	TelegramChatID    string // fixed Telegram destination for LINE messages
	LINETag           string
	TelegramTag       string
	UnknownSender     string
	JoinReply         string // empty disables the join confirmation
	LINEAllowFrom     []string
	TelegramAllowFrom []string
	Metrics           *Metrics
	Now               func() time.Time
}

// Controller holds no per-request state; the binding lives in the Store.
type Controller struct {
	store         state.Store
	line          channels.LINEGateway
	telegram      channels.TelegramGateway
	telegramChat  string
	lineTag       string
	telegramTag   string
	unknownSender string
	joinReply     string
	lineAllow     channels.AllowList
	telegramAllow channels.AllowList
	metrics       *Metrics
	now           func() time.Time
}

func NewController(
	store state.Store,
	line channels.LINEGateway,
	telegram channels.TelegramGateway,
	opts Options,
) *Controller {
	c := &Controller{
		store:         store,
		line:          line,
		telegram:      telegram,
		telegramChat:  opts.TelegramChatID,
		lineTag:       opts.LINETag,
		telegramTag:   opts.TelegramTag,
		unknownSender: opts.UnknownSender,
		joinReply:     opts.JoinReply,
		lineAllow:     channels.NewAllowList(opts.LINEAllowFrom),
		telegramAllow: channels.NewAllowList(opts.TelegramAllowFrom),
		metrics:       opts.Metrics,
		now:           opts.Now,
	}
	if c.lineTag == "" {
		c.lineTag = "LINE"
	}
	if c.telegramTag == "" {
		c.telegramTag = "Telegram"
	}
	if c.unknownSender == "" {
		c.unknownSender = "Unknown"
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// UnknownSender is the display name used for Telegram senders without one.
func (c *Controller) UnknownSender() string { return c.unknownSender }

// FormatFromLINE renders a LINE message for Telegram: "[tag] sender: text".
func FormatFromLINE(tag, senderID, text string) string {
	return "[" + tag + "] " + senderID + ": " + text
}

// FormatFromTelegram renders a Telegram message for LINE: "[tag - name]: text".
func FormatFromTelegram(tag, senderName, text string) string {
	return "[" + tag + " - " + senderName + "]: " + text
}

// HandleLINE processes one classified LINE event.
func (c *Controller) HandleLINE(ctx context.Context, ev bus.InboundEvent) Outcome {
	switch ev.Kind {
	case bus.KindJoin:
		return c.bind(ctx, ev)
	case bus.KindMessage:
		return c.forwardToTelegram(ctx, ev)
	default:
		logger.DebugCF("bridge", "Ignoring LINE event", map[string]any{"reason": ev.Reason})
		return OutcomeIgnored
	}
}

func (c *Controller) bind(ctx context.Context, ev bus.InboundEvent) Outcome {
	binding := state.Binding{
		DestinationID: ev.SourceID,
		Origin:        state.OriginJoin,
		UpdatedAt:     c.now().UTC(),
	}
	if err := c.store.Save(ctx, binding); err != nil {
		c.metrics.BindingUpdates.WithLabelValues("failed").Inc()
		logger.ErrorCF("bridge", "Failed to save binding; previous binding stays active", map[string]any{
			"destination": ev.SourceID,
			"error":       err.Error(),
		})
		return OutcomeStoreFailed
	}
	c.metrics.BindingUpdates.WithLabelValues("saved").Inc()
	logger.InfoCF("bridge", "Binding updated", map[string]any{"destination": ev.SourceID})

	// The confirmation goes through the event's own reply token, not a push
	// to the new binding.
	if c.joinReply != "" && ev.ReplyToken != "" {
		if err := c.line.ReplyMessage(ctx, ev.ReplyToken, c.joinReply); err != nil {
			logger.WarnCF("bridge", "Join confirmation failed", map[string]any{
				"destination": ev.SourceID,
				"error":       err.Error(),
			})
		}
	}
	return OutcomeBound
}

func (c *Controller) forwardToTelegram(ctx context.Context, ev bus.InboundEvent) Outcome {
	if !c.lineAllow.Allows(ev.SourceID, "") {
		logger.DebugCF("bridge", "LINE sender not in allow list", map[string]any{"sender": ev.SourceID})
		return OutcomeNotAllowed
	}

	msg := bus.ForwardedMessage{
		Recipient: c.telegramChat,
		Body:      FormatFromLINE(c.lineTag, ev.SourceID, ev.Text),
	}
	if err := c.telegram.SendMessage(ctx, msg.Recipient, msg.Body); err != nil {
		c.metrics.Forwards.WithLabelValues(directionLINEToTelegram, "failed").Inc()
		logger.ErrorCF("bridge", "Forward to Telegram failed", map[string]any{
			"chat_id": msg.Recipient,
			"sender":  ev.SourceID,
			"error":   err.Error(),
		})
		return OutcomeSendFailed
	}
	c.metrics.Forwards.WithLabelValues(directionLINEToTelegram, "sent").Inc()
	logger.DebugCF("bridge", "Forwarded LINE message", map[string]any{
		"chat_id": msg.Recipient,
		"sender":  ev.SourceID,
	})
	return OutcomeForwarded
}

// HandleTelegram processes one classified Telegram event.
func (c *Controller) HandleTelegram(ctx context.Context, ev bus.InboundEvent) Outcome {
	if ev.Kind != bus.KindMessage {
		logger.DebugCF("bridge", "Ignoring Telegram update", map[string]any{"reason": ev.Reason})
		return OutcomeIgnored
	}
	if !c.telegramAllow.Allows(ev.SourceID, ev.SenderHandle) {
		logger.DebugCF("bridge", "Telegram sender not in allow list", map[string]any{
			"sender":   ev.SourceID,
			"username": ev.SenderHandle,
		})
		return OutcomeNotAllowed
	}

	binding, ok, err := c.store.Load(ctx)
	if err != nil {
		logger.ErrorCF("bridge", "Failed to load binding; treating as unset", map[string]any{
			"error": err.Error(),
		})
	}
	if !ok {
		c.metrics.Forwards.WithLabelValues(directionTelegramToLINE, "no_destination").Inc()
		logger.WarnC("bridge", "No LINE destination bound yet; dropping Telegram message")
		return OutcomeNoDestination
	}

	name := ev.SenderName
	if name == "" {
		name = c.unknownSender
	}
	msg := bus.ForwardedMessage{
		Recipient: binding.DestinationID,
		Body:      FormatFromTelegram(c.telegramTag, name, ev.Text),
	}
	if err := c.line.PushMessage(ctx, msg.Recipient, msg.Body); err != nil {
		c.metrics.Forwards.WithLabelValues(directionTelegramToLINE, "failed").Inc()
		logger.ErrorCF("bridge", "Forward to LINE failed", map[string]any{
			"destination": msg.Recipient,
			"error":       err.Error(),
		})
		return OutcomeSendFailed
	}
	c.metrics.Forwards.WithLabelValues(directionTelegramToLINE, "sent").Inc()
	logger.DebugCF("bridge", "Forwarded Telegram message", map[string]any{"destination": msg.Recipient})
	return OutcomeForwarded
}

// SeedBinding stores dest as the initial binding when none exists or the
// stored record is corrupt. It is a no-op when dest is empty or a binding is
// already present.
func (c *Controller) SeedBinding(ctx context.Context, dest string) (bool, error) {
	if dest == "" {
		return false, nil
	}
	_, ok, err := c.store.Load(ctx)
	if ok {
		return false, nil
	}
	if err != nil && !errors.Is(err, state.ErrCorruptBinding) {
		return false, err
	}
	err = c.store.Save(ctx, state.Binding{
		DestinationID: dest,
		Origin:        state.OriginSeed,
		UpdatedAt:     c.now().UTC(),
	})
	if err != nil {
		return false, err
	}
	logger.InfoCF("bridge", "Seeded binding from config", map[string]any{"destination": dest})
	return true, nil
}
