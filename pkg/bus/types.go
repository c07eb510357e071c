// Package bus defines the transient values that flow through the bridge for
// a single webhook delivery: the classified inbound event and the message
// forwarded to the opposite platform.
package bus

// Platform identifies which side of the bridge an event came from.
type Platform string

const (
	PlatformLINE     Platform = "line"
	PlatformTelegram Platform = "telegram"
)

// Kind is the classification the controller dispatches on.
type Kind int

const (
	KindOther Kind = iota
	KindMessage
	KindJoin
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindJoin:
		return "join"
	default:
		return "other"
	}
}

type InboundEvent struct {
	Platform     Platform `json:"platform"`
	Kind         Kind     `json:"kind"`
	SourceID     string   `json:"source_id"`               // sender id for messages, conversation id for joins
	SenderName   string   `json:"sender_name,omitempty"`   // display name, Telegram only
	SenderHandle string   `json:"sender_handle,omitempty"` // username, Telegram only
	Text         string   `json:"text,omitempty"`
	ReplyToken   string   `json:"reply_token,omitempty"` // LINE reply handle
	Reason       string   `json:"reason,omitempty"`      // why the event was classified Other
}

type ForwardedMessage struct {
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
}
