// Package notify delivers notification requests to the mail service.
//
// Dispatch is best-effort: callers send after their unit of work commits and
// only log failures.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	id "efile/pkg/domain"
	"efile/pkg/requestcontext"
)

// TemplateFilingReceived is sent to an entity's filers once a filing is filed.
const TemplateFilingReceived = "lobbyist_filing_received"

// Message is one templated notification.
type Message struct {
	Template   string         `json:"template"`
	Recipients []string       `json:"recipients"`
	Data       map[string]any `json:"data"`
	FilingID   id.FilingID    `json:"filing_id"`
	RequestID  string         `json:"request_id,omitempty"`
	SentAt     time.Time      `json:"sent_at"`
}

// Dispatcher hands a message to the delivery channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// stamp fills the request id and send time from ctx.
func stamp(ctx context.Context, msg Message) Message {
	if msg.RequestID == "" {
		msg.RequestID = requestcontext.RequestID(ctx)
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = requestcontext.Now(ctx).UTC()
	}
	return msg
}

func encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// LogDispatcher writes messages to the log instead of delivering them.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, msg Message) error {
	msg = stamp(ctx, msg)
	d.logger.InfoContext(ctx, "notification",
		"template", msg.Template,
		"filing_id", msg.FilingID,
		"recipients", len(msg.Recipients),
		"request_id", msg.RequestID,
	)
	return nil
}
