package worker

// notification_worker.go
// Processes notification jobs from QueueNotifications: resolves recipient
// addresses and delivers plain-text emails through the SMTP circuit breaker.
// Failed deliveries are rescheduled with backoff; after MaxNotificationRetries
// the job lands in the DLQ.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scp/internal/infra"
	"scp/internal/model"
	"scp/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const MaxNotificationRetries = 3

// NotificationPayload describes a workflow event to notify about. Exactly
// one of ConsumerID/SupplierID names the recipient side.
type NotificationPayload struct {
	Event      string `json:"event"`
	ConsumerID string `json:"consumer_id,omitempty"`
	SupplierID string `json:"supplier_id,omitempty"`
	EntityID   string `json:"entity_id"`
}

// subjects maps workflow events to email subject lines.
var subjects = map[string]string{
	"link.requested":           "New partnership request",
	"link.approved":            "Partnership request approved",
	"link.rejected":            "Partnership request declined",
	"link.blocked":             "Partnership blocked",
	"order.placed":             "New order received",
	"order.confirmed":          "Your order was confirmed",
	"order.rejected":           "Your order was rejected",
	"complaint.filed":          "New complaint filed",
	"complaint.escalated":      "Complaint escalated",
	"complaint.status_changed": "Complaint status updated",
}

// NotificationWorker delivers workflow notification emails.
type NotificationWorker struct {
	users  repository.UserRepository
	staff  repository.StaffRepository
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
	rdb    *redis.Client
}

func NewNotificationWorker(
	users repository.UserRepository,
	staff repository.StaffRepository,
	mailer *infra.Mailer,
	cb *infra.CircuitBreaker,
	rdb *redis.Client,
) *NotificationWorker {
	return &NotificationWorker{users: users, staff: staff, mailer: mailer, cb: cb, rdb: rdb}
}

// Process delivers one notification. Delivery is best effort: workflow
// state committed before the job was enqueued, so failures only affect the
// email, never the transition.
func (w *NotificationWorker) Process(ctx context.Context, job Job) {
	var payload NotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Msg("notification_worker: invalid payload")
		return
	}

	recipients, err := w.resolveRecipients(ctx, payload)
	if err != nil {
		log.Error().Err(err).Str("event", payload.Event).Msg("notification_worker: cannot resolve recipients")
		return
	}
	if len(recipients) == 0 {
		log.Warn().Str("event", payload.Event).Msg("notification_worker: no recipients — skipping")
		return
	}

	subject, ok := subjects[payload.Event]
	if !ok {
		subject = "Marketplace notification"
	}
	body := fmt.Sprintf("Event: %s\nReference: %s\n", payload.Event, payload.EntityID)

	var failed bool
	for _, to := range recipients {
		sendErr := w.cb.Execute(func() error {
			return w.mailer.Send(to, subject, body)
		})
		if sendErr != nil {
			failed = true
			log.Error().Err(sendErr).Str("to", to).Str("event", payload.Event).
				Msg("notification_worker: delivery failed")
			if errors.Is(sendErr, infra.ErrCircuitOpen) {
				break // relay is down, no point trying the rest
			}
		}
	}
	if failed {
		w.reschedule(ctx, job, payload)
		return
	}
	log.Info().Str("event", payload.Event).Int("recipients", len(recipients)).
		Msg("notification_worker: delivered")
}

// resolveRecipients maps the payload to email addresses: the consumer's
// account email, or the supplier's owner-level staff.
func (w *NotificationWorker) resolveRecipients(ctx context.Context, payload NotificationPayload) ([]string, error) {
	if payload.ConsumerID != "" {
		cid, err := uuid.Parse(payload.ConsumerID)
		if err != nil {
			return nil, err
		}
		profile, err := w.users.FindConsumerByID(ctx, cid)
		if err != nil {
			return nil, err
		}
		user, err := w.users.FindByID(ctx, profile.UserID)
		if err != nil {
			return nil, err
		}
		return []string{user.Email}, nil
	}

	if payload.SupplierID != "" {
		sid, err := uuid.Parse(payload.SupplierID)
		if err != nil {
			return nil, err
		}
		owners, err := w.staff.ListBySupplierAndRole(ctx, sid, model.RoleOwner)
		if err != nil {
			return nil, err
		}
		var emails []string
		for _, o := range owners {
			if o.User != nil {
				emails = append(emails, o.User.Email)
			}
		}
		return emails, nil
	}

	return nil, nil
}

// reschedule pushes the job into the delayed retry set with exponential
// backoff, or into the DLQ once retries are exhausted.
func (w *NotificationWorker) reschedule(ctx context.Context, job Job, payload NotificationPayload) {
	attempts := job.Attempts + 1
	if attempts >= MaxNotificationRetries {
		SendToDLQ(ctx, w.rdb, QueueNotifications, job.Type, job.Payload,
			fmt.Sprintf("max retries (%d) exceeded", MaxNotificationRetries), attempts)
		return
	}

	job.Attempts = attempts
	if err := ScheduleRetry(ctx, w.rdb, job, computeRetryBackoff(attempts)); err != nil {
		log.Error().Err(err).Str("event", payload.Event).Msg("notification_worker: failed to schedule retry")
		return
	}
	log.Warn().Str("event", payload.Event).Int("attempt", attempts).
		Msg("notification_worker: retry scheduled")
}

// computeRetryBackoff: 1m, 4m, 9m…
func computeRetryBackoff(attempt int) time.Duration {
	return time.Duration(attempt*attempt) * time.Minute
}
