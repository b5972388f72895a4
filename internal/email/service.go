package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/mediseen/teleconsult-api/config"
	"github.com/mediseen/teleconsult-api/internal/model"
	"github.com/mediseen/teleconsult-api/pkg/logger"
)

type Service interface {
	SendBookingConfirmation(ctx context.Context, to string, apt *model.Appointment) error
	SendCancellation(ctx context.Context, to string, apt *model.Appointment) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewService(cfg config.EmailConfig, log *logger.Logger) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: log,
	}
}

func (s *smtpService) SendBookingConfirmation(ctx context.Context, to string, apt *model.Appointment) error {
	body := fmt.Sprintf(
		"Your consultation is booked.\n\nDate: %s\nTime: %s\nFee paid: %.2f\nBooking reference: %s\n",
		apt.Date, apt.TimeSlot, apt.Fee, apt.ID.String(),
	)
	return s.send(ctx, to, "Consultation booking confirmed", body)
}

func (s *smtpService) SendCancellation(ctx context.Context, to string, apt *model.Appointment) error {
	body := fmt.Sprintf(
		"Your consultation on %s at %s has been cancelled.\nBooking reference: %s\n",
		apt.Date, apt.TimeSlot, apt.ID.String(),
	)
	return s.send(ctx, to, "Consultation cancelled", body)
}

func (s *smtpService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}
