package notifications

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cinewatch/internal/config"
	"cinewatch/internal/logging"
	"cinewatch/internal/services"
)

const defaultTimeout = 10 * time.Second

// Service defines the notification surface used by the checker and daemon.
type Service interface {
	NotifyMatches(ctx context.Context, summary Summary) error
	NotifyError(ctx context.Context, err error, label string) error
	TestNotification(ctx context.Context) error
}

// Sender delivers a rendered message over one transport.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// NewService builds a service that fans out to every configured sender. When
// no sender is configured, a noop implementation is returned. A positive
// dedup window wraps the result in Dedup.
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	senders := Senders(cfg)
	if len(senders) == 0 {
		return noopService{}
	}
	var svc Service = NewMulti(logger, senders...)
	if window := time.Duration(cfg.Notifications.DedupWindowSeconds) * time.Second; window > 0 {
		svc = NewDedup(svc, window)
	}
	return svc
}

// Senders returns a sender for every transport with complete settings.
func Senders(cfg *config.Config) []Sender {
	if cfg == nil {
		return nil
	}
	n := cfg.Notifications
	timeout := time.Duration(n.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var senders []Sender
	if topic := strings.TrimSpace(n.NtfyTopic); topic != "" {
		senders = append(senders, NewNtfy(topic, timeout))
	}
	if n.TelegramBotToken != "" && n.TelegramChatID != "" {
		senders = append(senders, NewTelegram(n.TelegramBaseURL, n.TelegramBotToken, n.TelegramChatID, timeout))
	}
	if n.EmailSMTPHost != "" && n.EmailFrom != "" && len(n.EmailTo) > 0 {
		senders = append(senders, NewEmail(EmailConfig{
			Host:     n.EmailSMTPHost,
			Port:     n.EmailSMTPPort,
			Username: n.EmailUsername,
			Password: n.EmailPassword,
			From:     n.EmailFrom,
			To:       n.EmailTo,
			Timeout:  timeout,
		}))
	}
	return senders
}

// Multi sends every message through each sender in turn. One failing sender
// does not stop the others; their errors are joined.
type Multi struct {
	senders []Sender
	logger  *slog.Logger
}

// NewMulti builds a fan-out service over senders.
func NewMulti(logger *slog.Logger, senders ...Sender) *Multi {
	return &Multi{senders: senders, logger: logging.NewComponentLogger(logger, "notifications")}
}

func (m *Multi) NotifyMatches(ctx context.Context, summary Summary) error {
	return m.send(ctx, matchesMessage(summary))
}

func (m *Multi) NotifyError(ctx context.Context, err error, label string) error {
	return m.send(ctx, errorMessage(err, label))
}

func (m *Multi) TestNotification(ctx context.Context) error {
	return m.send(ctx, testMessage())
}

func (m *Multi) send(ctx context.Context, msg Message) error {
	logger := logging.WithContext(ctx, m.logger)
	var errs []error
	for _, s := range m.senders {
		if err := s.Send(ctx, msg); err != nil {
			logging.WarnWithContext(logger, "notification failed", "notification_failed",
				logging.String("sender", s.Name()),
				logging.String("title", msg.Title),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run `cinewatch test-notify` to check the sender settings"),
			)
			errs = append(errs, services.Wrap(services.ErrNotify, "notifications", s.Name(), "send failed", err))
			continue
		}
		logger.Debug("notification sent", logging.String("sender", s.Name()), logging.String("title", msg.Title))
	}
	return errors.Join(errs...)
}

type noopService struct{}

func (noopService) NotifyMatches(context.Context, Summary) error     { return nil }
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }

// Noop returns a Service that discards every notification.
func Noop() Service { return noopService{} }

// IsNoop reports whether svc discards every notification.
func IsNoop(svc Service) bool {
	_, ok := svc.(noopService)
	return ok
}
