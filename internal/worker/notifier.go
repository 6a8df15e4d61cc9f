package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"singil/internal/amqp"
	"singil/internal/core"
	"singil/internal/portal"
	"singil/internal/services"
	"singil/internal/storage"
)

// Notifier polls the portal's admin notifications on a cadence, publishes
// events for items it has not seen before, and records read-state locally.
// A failed poll is logged and retried on the next tick; the loop never
// stops on a poll error.
type Notifier struct {
	reader     portal.NotificationReader
	marker     portal.NotificationMarker
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	interval   time.Duration
	cadence    services.Cadence
	now        func() time.Time

	consecutiveFailures int
}

const DefaultPollInterval = 60 * time.Second

func NewNotifier(
	reader portal.NotificationReader,
	marker portal.NotificationMarker,
	storage *storage.SQLiteRepository,
	amqpClient *amqp.Client,
	interval time.Duration,
	cadence services.Cadence,
) *Notifier {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if cadence == nil {
		cadence = services.FixedCadence{}
	}
	return &Notifier{
		reader:     reader,
		marker:     marker,
		storage:    storage,
		amqpClient: amqpClient,
		interval:   interval,
		cadence:    cadence,
		now:        time.Now,
	}
}

// Run polls until the context is cancelled. The first poll happens
// immediately; later polls are spaced by the cadence strategy.
func (n *Notifier) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Notification poller started", "interval", n.interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Notification poller stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-timer.C:
			if err := n.Poll(ctx); err != nil {
				n.consecutiveFailures++
				slog.ErrorContext(ctx, "Notification poll failed",
					"error", err,
					"consecutive_failures", n.consecutiveFailures)
			} else {
				n.consecutiveFailures = 0
			}
			timer.Reset(n.cadence.Next(n.interval, n.consecutiveFailures, n.now()))
		}
	}
}

// Poll fetches the current notification list once and fans out anything
// unseen. Publish failures are logged per item; a failed publish leaves
// the item unseen so the next poll retries it.
func (n *Notifier) Poll(ctx context.Context) error {
	notifications, err := n.reader.Notifications(ctx)
	if err != nil {
		return fmt.Errorf("fetch notifications: %w", err)
	}

	seen := map[int64]bool{}
	if n.storage != nil {
		seen, err = n.storage.SeenNotificationIDs(ctx)
		if err != nil {
			return fmt.Errorf("load seen notifications: %w", err)
		}
	}

	for _, notif := range notifications {
		if seen[notif.ID] {
			continue
		}
		if err := n.publish(ctx, notif); err != nil {
			slog.ErrorContext(ctx, "Failed to publish notification event",
				"id", notif.ID,
				"error", err)
			continue
		}
		if n.storage != nil {
			if err := n.storage.MarkNotificationSeen(ctx, notif.ID, n.now()); err != nil {
				slog.WarnContext(ctx, "Failed to record notification as seen",
					"id", notif.ID,
					"error", err)
			}
		}
	}

	return nil
}

// UnreadCount reports how many fetched notifications are still unread.
func (n *Notifier) UnreadCount(ctx context.Context) (int, error) {
	notifications, err := n.reader.Notifications(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch notifications: %w", err)
	}
	count := 0
	for _, notif := range notifications {
		if !notif.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead marks a notification read on the portal, then mirrors the
// read-state locally. The local write is best-effort.
func (n *Notifier) MarkRead(ctx context.Context, id int64) error {
	if err := n.marker.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	if n.storage != nil {
		if err := n.storage.MarkNotificationRead(ctx, id, n.now()); err != nil {
			slog.WarnContext(ctx, "Failed to record notification as read",
				"id", id,
				"error", err)
		}
	}
	return nil
}

func (n *Notifier) publish(ctx context.Context, notif core.Notification) error {
	if n.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping notification event",
			"id", notif.ID)
		return nil
	}
	event := amqp.NewNotificationEvent(notif.ID, notif.Title, core.NotificationTarget(notif.Title), notif.CreatedAt)
	return n.amqpClient.PublishNotification(ctx, event)
}
