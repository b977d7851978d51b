package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"
)

type Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Service sends "report ready" notifications to patients. Delivery is
// best-effort: the pipeline never fails because an email did not go out.
type Service interface {
	SendReportReady(ctx context.Context, to, patientName string, reportID uuid.UUID) error
}

type service struct {
	cfg    Config
	dialer *gomail.Dialer
	logger *zerolog.Logger
}

func NewService(cfg Config, logger *zerolog.Logger) Service {
	return &service{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

func (s *service) SendReportReady(ctx context.Context, to, patientName string, reportID uuid.UUID) error {
	if !s.cfg.Enabled {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your speech analysis report is ready")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nA new speech emotion analysis report (%s) is available in your account.\n",
		patientName, reportID,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send report notification: %w", err)
	}

	s.logger.Info().
		Str("report_id", reportID.String()).
		Str("recipient", to).
		Msg("sent report-ready notification")
	return nil
}
