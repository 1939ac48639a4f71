package service

import (
	"context"
	"fmt"
	"time"

	"church-attendance/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Notifier delivers a text message to a chat.
type Notifier interface {
	Notify(chatID int64, text string) error
}

// DigestService periodically sends the attendance summary to everyone who
// manages gatherings.
type DigestService struct {
	reports  *ReportService
	users    *UserService
	notifier Notifier
	cron     *cron.Cron
	location *time.Location
	logger   *logrus.Logger
}

func NewDigestService(reports *ReportService, users *UserService, notifier Notifier, location *time.Location) *DigestService {
	if location == nil {
		location = time.Local
	}
	return &DigestService{
		reports:  reports,
		users:    users,
		notifier: notifier,
		location: location,
		logger:   newLogger(),
	}
}

// Start schedules the digest with a standard five-field cron spec.
func (s *DigestService) Start(spec string) error {
	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if sent, err := s.RunOnce(ctx); err != nil {
			s.logger.WithError(err).Error("Digest run failed")
		} else {
			s.logger.WithField("sent", sent).Info("Digest delivered")
		}
	}); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}

	s.cron = c
	c.Start()
	s.logger.WithField("spec", spec).Info("Digest scheduler started")
	return nil
}

// Stop waits for a running digest to finish.
func (s *DigestService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunOnce summarizes all active gatherings and notifies every admin and
// coordinator with a linked chat. It returns the number of messages sent.
// Delivery failures are logged and do not stop the remaining recipients.
func (s *DigestService) RunOnce(ctx context.Context) (int, error) {
	summary, err := s.reports.Summary(ctx, nil, time.Now().In(s.location))
	if err != nil {
		return 0, err
	}

	recipients, err := s.users.GetByRoles(models.RoleAdmin, models.RoleCoordinator)
	if err != nil {
		return 0, fmt.Errorf("failed to load digest recipients: %w", err)
	}

	text := "📬 Weekly attendance digest\n\n" + s.reports.FormatSummary(summary)

	sent := 0
	for _, u := range recipients {
		if !u.HasChat() {
			continue
		}
		if err := s.notifier.Notify(*u.ChatID, text); err != nil {
			s.logger.WithError(err).WithField("chat_id", *u.ChatID).Warn("Failed to deliver digest")
			continue
		}
		sent++
	}
	return sent, nil
}
