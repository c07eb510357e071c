package bridge

import (
	"encoding/json"
	"strconv"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/picobridge/pkg/bus"
)

// ClassifyLINE maps a decoded LINE webhook event to an InboundEvent.
//
// Join events bind the conversation the bot was added to: the group id if
// present, else the room id, else the user id. Text messages become
// KindMessage keyed by the sender's user id. Everything else, including
// non-text messages, is KindOther.
func ClassifyLINE(event webhook.EventInterface) bus.InboundEvent {
	ev := bus.InboundEvent{Platform: bus.PlatformLINE, Kind: bus.KindOther}

	switch e := event.(type) {
	case webhook.JoinEvent:
		ev.ReplyToken = e.ReplyToken
		group, room, user := sourceIDs(e.Source)
		switch {
		case group != "":
			ev.SourceID = group
		case room != "":
			ev.SourceID = room
		case user != "":
			ev.SourceID = user
		default:
			ev.Reason = "join without source id"
			return ev
		}
		ev.Kind = bus.KindJoin

	case webhook.MessageEvent:
		ev.ReplyToken = e.ReplyToken
		text, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			ev.Reason = "non-text message"
			return ev
		}
		group, room, user := sourceIDs(e.Source)
		switch {
		case user != "":
			ev.SourceID = user
		case group != "":
			ev.SourceID = group
		case room != "":
			ev.SourceID = room
		default:
			ev.Reason = "message without sender id"
			return ev
		}
		ev.Kind = bus.KindMessage
		ev.Text = text.Text

	default:
		ev.Reason = "unhandled event type"
		if event != nil {
			ev.Reason += " " + event.GetType()
		}
	}
	return ev
}

func sourceIDs(src webhook.SourceInterface) (group, room, user string) {
	switch s := src.(type) {
	case webhook.GroupSource:
		return s.GroupId, "", s.UserId
	case webhook.RoomSource:
		return "", s.RoomId, s.UserId
	case webhook.UserSource:
		return "", "", s.UserId
	}
	return "", "", ""
}

// ClassifyTelegram decodes a Telegram update and maps it to an InboundEvent.
// Only updates carrying a message with text are KindMessage; malformed JSON,
// edits, channel posts and media-only messages are KindOther. When the
// sender has no first name, unknownSender is used as the display name.
func ClassifyTelegram(body []byte, unknownSender string) bus.InboundEvent {
	ev := bus.InboundEvent{Platform: bus.PlatformTelegram, Kind: bus.KindOther}

	var update telego.Update
	if err := json.Unmarshal(body, &update); err != nil {
		ev.Reason = "malformed update: " + err.Error()
		return ev
	}
	msg := update.Message
	if msg == nil {
		ev.Reason = "update without message"
		return ev
	}
	if msg.Text == "" {
		ev.Reason = "message without text"
		return ev
	}

	ev.Kind = bus.KindMessage
	ev.Text = msg.Text
	ev.SenderName = unknownSender
	if msg.From != nil {
		ev.SourceID = strconv.FormatInt(msg.From.ID, 10)
		ev.SenderHandle = msg.From.Username
		if msg.From.FirstName != "" {
			ev.SenderName = msg.From.FirstName
		}
	} else if msg.Chat.ID != 0 {
		ev.SourceID = strconv.FormatInt(msg.Chat.ID, 10)
	}
	return ev
}
