// Package channels holds the outbound gateways for the two bridged platforms
// and the sender allow lists applied to inbound traffic.
package channels

import (
	"context"
	"strings"
)

// Gateway is the common surface of the outbound adapters.
type Gateway interface {
	Name() string
}

// LINEGateway sends text to LINE, either as a reply to a webhook event or as
// a push to a stored destination.
type LINEGateway interface {
	Gateway
	ReplyMessage(ctx context.Context, replyToken, text string) error
	PushMessage(ctx context.Context, to, text string) error
}

// TelegramGateway sends text to a Telegram chat.
type TelegramGateway interface {
	Gateway
	SendMessage(ctx context.Context, chatID, text string) error
}

// AllowList restricts which senders are relayed. An empty list allows
// everyone. Entries match a sender id, or a username with or without a
// leading "@"; the legacy "id|username" form is accepted on either side.
type AllowList []string

func NewAllowList(entries []string) AllowList {
	out := make(AllowList, 0, len(entries))
	for _, e := range entries {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func (a AllowList) Allows(senderID, username string) bool {
	if len(a) == 0 {
		return true
	}
	for _, allowed := range a {
		trimmed := strings.TrimPrefix(allowed, "@")
		allowedID, allowedUser := trimmed, ""
		if idx := strings.Index(trimmed, "|"); idx > 0 {
			allowedID = trimmed[:idx]
			allowedUser = trimmed[idx+1:]
		}

		if senderID != "" && (senderID == allowed || senderID == allowedID) {
			return true
		}
		if username != "" && (username == trimmed || username == allowedUser) {
			return true
		}
	}
	return false
}
