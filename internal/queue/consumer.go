package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/parking-spot-reservation/internal/log"
)

// DefaultAuditLog is where the consumer appends when no path is configured.
const DefaultAuditLog = "logs/notifications.log"

// StartNotificationConsumer connects to RabbitMQ, declares the
// notification queue and appends each message to the audit log at
// logPath as one line. It reconnects with exponential backoff and returns
// only when ctx is cancelled. Malformed messages are rejected without
// requeue so they cannot loop.
func StartNotificationConsumer(ctx context.Context, url, logPath string) error {
	if url == "" {
		url = DefaultURL
	}
	if logPath == "" {
		logPath = DefaultAuditLog
	}

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn(ctx, "notification consumer: dial failed",
				log.Err("error", err), log.Time("retry_at", time.Now().Add(backoff)))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, logPath)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn(ctx, "notification consumer: loop ended, reconnecting", log.Err("error", err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn(ctx, "notification consumer: set QoS failed", log.Err("error", err))
	}
	if _, err := ch.QueueDeclare(NotificationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(NotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := appendAudit(logPath, d.Body); err != nil {
				log.Error(ctx, "notification consumer: handle message failed", log.Err("error", err))
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// appendAudit decodes a NotificationEvent and appends it to path.
func appendAudit(path string, body []byte) error {
	var ev NotificationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatAuditLine(ev)); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// FormatAuditLine renders ev as one human friendly log line.
func FormatAuditLine(ev NotificationEvent) string {
	related := "-"
	if ev.RelatedReservationID != nil {
		related = fmt.Sprintf("%d", *ev.RelatedReservationID)
	}
	spot := "-"
	if ev.RelatedSpotNumber != nil {
		spot = fmt.Sprintf("%d", *ev.RelatedSpotNumber)
	}
	return fmt.Sprintf("[%s] Notification %s | id=%d | user_id=%d | reservation_id=%s | spot=%s | title=%q | message=%q\n",
		ev.CreatedAt, ev.Kind, ev.NotificationID, ev.RecipientUserID, related, spot, ev.Title, ev.Message)
}
