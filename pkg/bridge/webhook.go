package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/tinyland-inc/picobridge/pkg/bus"
	"github.com/tinyland-inc/picobridge/pkg/logger"
	"github.com/tinyland-inc/picobridge/pkg/signature"
)

// maxWebhookBodySize caps inbound payloads. Both platforms send small JSON
// documents; 1 MiB leaves ample room for batched LINE events.
const maxWebhookBodySize = 1 << 20

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}

// LINEWebhookHandler serves POST /callback. Requests whose X-Line-Signature
// does not match the body are rejected with 400 before any processing;
// every authenticated request is answered 200 "OK" whatever happens to the
// forwarded message.
func (c *Controller) LINEWebhookHandler(channelSecret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
		if err != nil {
			c.metrics.WebhookRequests.WithLabelValues(string(bus.PlatformLINE), "unauthorized").Inc()
			logger.WarnCF("bridge", "Failed to read LINE webhook body", map[string]any{"error": err.Error()})
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		if !signature.Verify(body, r.Header.Get(signature.HeaderName), channelSecret) {
			c.metrics.WebhookRequests.WithLabelValues(string(bus.PlatformLINE), "unauthorized").Inc()
			logger.WarnCF("bridge", "Rejected LINE webhook with invalid signature", map[string]any{
				"remote_addr": r.RemoteAddr,
			})
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		logger.DebugCF("bridge", "LINE webhook body", map[string]any{"body": string(body)})

		var cb webhook.CallbackRequest
		if err := json.Unmarshal(body, &cb); err != nil {
			c.metrics.WebhookRequests.WithLabelValues(string(bus.PlatformLINE), "malformed").Inc()
			logger.WarnCF("bridge", "Malformed LINE webhook payload", map[string]any{"error": err.Error()})
			writeOK(w)
			return
		}
		c.metrics.WebhookRequests.WithLabelValues(string(bus.PlatformLINE), "ok").Inc()

		// Forwarding finishes even if LINE hangs up; the outbound HTTP client
		// bounds how long that takes.
		ctx := context.WithoutCancel(r.Context())
		for _, event := range cb.Events {
			c.HandleLINE(ctx, ClassifyLINE(event))
		}
		writeOK(w)
	})
}

// TelegramWebhookHandler serves POST /telegram. Telegram updates carry no
// signature in this integration, so every POST is answered 200 "OK".
func (c *Controller) TelegramWebhookHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
		if err != nil {
			c.metrics.WebhookRequests.WithLabelValues(string(bus.PlatformTelegram), "malformed").Inc()
			logger.WarnCF("bridge", "Failed to read Telegram webhook body", map[string]any{"error": err.Error()})
			writeOK(w)
			return
		}
		logger.DebugCF("bridge", "Telegram webhook body", map[string]any{"body": string(body)})

		ev := ClassifyTelegram(body, c.unknownSender)
		outcome := "ok"
		if ev.Kind == bus.KindOther && !json.Valid(body) {
			outcome = "malformed"
		}
		c.metrics.WebhookRequests.WithLabelValues(string(bus.PlatformTelegram), outcome).Inc()

		c.HandleTelegram(context.WithoutCancel(r.Context()), ev)
		writeOK(w)
	})
}
