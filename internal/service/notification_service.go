package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bravoform/bravoform-api/internal/dto"
	"github.com/bravoform/bravoform-api/internal/models"
	"github.com/bravoform/bravoform-api/pkg/events"
	"github.com/bravoform/bravoform-api/pkg/jobs"
)

// Notification is the outbound payload delivered to the webhook gateway,
// which fans it out to the channel named by Channel.
type Notification struct {
	Channel    string               `json:"channel"`
	Target     string               `json:"target"`
	FormID     string               `json:"form_id"`
	FormTitle  string               `json:"form_title"`
	ResponseID string               `json:"response_id"`
	Respondent string               `json:"respondent"`
	OccurredAt time.Time            `json:"occurred_at"`
	Edited     bool                 `json:"edited"`
	Answers    []dto.RenderedAnswer `json:"answers"`
}

// NotificationConfig configures the dispatcher.
type NotificationConfig struct {
	Enabled    bool
	WebhookURL string
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// NotificationService listens for response events and dispatches the form's
// configured automation through a background queue. Delivery is best effort:
// a failed webhook retries a few times and is then dropped with a log line,
// never failing the submission that triggered it.
type NotificationService struct {
	config NotificationConfig
	client *http.Client
	queue  *jobs.Queue
	sub    *events.Subscription
	logger *zap.Logger
	done   chan struct{}
}

// NewNotificationService constructs the dispatcher.
func NewNotificationService(config NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
		done:   make(chan struct{}),
	}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    config.Workers,
		MaxRetries: config.MaxRetries,
		RetryDelay: config.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start subscribes to the event bus and begins delivering. A disabled service
// starts nothing and ignores events.
func (s *NotificationService) Start(ctx context.Context, bus *events.Bus) {
	if !s.config.Enabled || bus == nil {
		return
	}
	s.queue.Start(ctx)
	s.sub = bus.Subscribe(events.TopicResponseCreated, events.TopicResponseEdited)
	go s.consume()
}

// Stop detaches from the bus and drains the workers.
func (s *NotificationService) Stop() {
	if s.sub != nil {
		s.sub.Close()
		<-s.done
	}
	s.queue.Stop()
}

func (s *NotificationService) consume() {
	defer close(s.done)
	for event := range s.sub.C() {
		payload, ok := event.Payload.(ResponseEvent)
		if !ok || payload.Form == nil || payload.Response == nil {
			continue
		}
		s.Dispatch(payload.Form, payload.Response, event.Topic == events.TopicResponseEdited)
	}
}

// Dispatch enqueues the notification for a response if the form has an
// automation configured.
func (s *NotificationService) Dispatch(form *models.Form, resp *models.Response, edited bool) {
	if form.Automation.Type == models.AutomationNone || form.Automation.Target == "" {
		return
	}
	notification := Notification{
		Channel:    string(form.Automation.Type),
		Target:     form.Automation.Target,
		FormID:     form.ID,
		FormTitle:  form.Title,
		ResponseID: resp.ID,
		Respondent: resp.CollaboratorUsername,
		OccurredAt: resp.EffectiveTime(),
		Edited:     edited,
		Answers:    RenderAnswers(form, resp.Answers),
	}
	job := jobs.Job{ID: uuid.NewString(), Type: "notification", Payload: notification}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("form_id", form.ID),
			zap.String("response_id", resp.ID),
			zap.Error(err))
	}
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(Notification)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("notification gateway returned %d", res.StatusCode)
	}
	s.logger.Info("notification delivered",
		zap.String("channel", notification.Channel),
		zap.String("form_id", notification.FormID),
		zap.String("response_id", notification.ResponseID))
	return nil
}
