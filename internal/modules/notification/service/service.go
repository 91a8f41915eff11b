package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/reshetovitsme/channel-watch/internal/modules/notification/domain"
	"github.com/reshetovitsme/channel-watch/internal/shared/metrics"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const chatNotFoundHint = "User needs to start a chat with your bot first! Send /start to your bot."

// Sender relays a notification to one recipient
type Sender interface {
	SendText(ctx context.Context, recipient, html string) error
	SendPhoto(ctx context.Context, recipient string, photo []byte, caption string) error
	SendAlbum(ctx context.Context, recipient string, photos [][]byte, caption string) error
}

// Service fans notifications out to every recipient
type Service struct {
	sender     Sender
	recipients []string
	metrics    *metrics.Metrics
	log        *slog.Logger
}

// New creates a new notification dispatcher
func New(sender Sender, recipients []string, m *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{
		sender:     sender,
		recipients: recipients,
		metrics:    m,
		log:        log,
	}
}

// Recipients returns the configured recipients
func (s *Service) Recipients() []string {
	return append([]string(nil), s.recipients...)
}

// Deliver sends payload with the richest method its photos allow. When the
// photo or album send reaches nobody, the full caption is sent once more as
// plain text.
func (s *Service) Deliver(ctx context.Context, payload domain.Payload) domain.Outcome {
	method := payload.Method()
	if method == domain.DeliveryMethodText {
		return s.SendText(ctx, payload.Caption)
	}

	caption := domain.TruncateCaption(payload.Caption, domain.CaptionLimit)
	outcome := s.fanOut(ctx, method, func(ctx context.Context, recipient string) error {
		if method == domain.DeliveryMethodPhoto {
			return s.sender.SendPhoto(ctx, recipient, payload.Photos[0], caption)
		}
		return s.sender.SendAlbum(ctx, recipient, payload.Photos, caption)
	})

	if !outcome.Delivered() {
		s.log.Warn("Media delivery reached no recipient, falling back to text", "method", method)
		s.metrics.Fallbacks.Inc()

		fallback := s.SendText(ctx, payload.Caption)
		fallback.Degraded = true
		return fallback
	}
	return outcome
}

// SendText sends caption as an HTML text message to every recipient
func (s *Service) SendText(ctx context.Context, caption string) domain.Outcome {
	s.log.Debug("Sending notification message...")

	html := domain.MarkdownToHTML(caption)
	return s.fanOut(ctx, domain.DeliveryMethodText, func(ctx context.Context, recipient string) error {
		return s.sender.SendText(ctx, recipient, html)
	})
}

func (s *Service) fanOut(ctx context.Context, method domain.DeliveryMethod, send func(context.Context, string) error) domain.Outcome {
	results := make([]domain.RecipientResult, len(s.recipients))

	var wg sync.WaitGroup
	for i, recipient := range s.recipients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = domain.RecipientResult{Recipient: recipient, Err: oops.Errorf("send panicked: %v", r)}
				}
			}()
			results[i] = domain.RecipientResult{
				Recipient: recipient,
				Err:       send(ctx, recipient),
			}
		}()
	}
	wg.Wait()

	for _, r := range results {
		if r.OK() {
			s.metrics.Deliveries.WithLabelValues(method.String(), "ok").Inc()
			continue
		}
		s.metrics.Deliveries.WithLabelValues(method.String(), "error").Inc()

		attrs := []any{"method", method, "recipient", r.Recipient, "error", r.Err}
		if strings.Contains(strings.ToLower(r.Err.Error()), "chat not found") {
			attrs = append(attrs, "hint", chatNotFoundHint)
		}
		s.log.Error("Failed to send notification", attrs...)
	}

	outcome := domain.Outcome{
		Method:    method,
		Results:   results,
		Succeeded: lo.CountBy(results, func(r domain.RecipientResult) bool { return r.OK() }),
		Total:     len(results),
	}
	s.log.Info("Notifications sent", "method", method, "success", outcome.Succeeded, "total", outcome.Total)
	return outcome
}
