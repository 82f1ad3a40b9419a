// Package notifier отправляет почтовые уведомления о готовых курсах.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coursgen/coursgen/internal/lib/sl"
	"github.com/coursgen/coursgen/internal/lib/smtp"
	"github.com/coursgen/coursgen/internal/models"
)

// Service потребляет события о сгенерированных курсах
// и рассылает письма со ссылками на документы.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{transport: transport, log: log}
}

// SendCourseReady обрабатывает тело события courses.generated
// и отправляет письмо со ссылками на скачивание.
func (s *Service) SendCourseReady(body []byte) error {
	var event models.CourseReadyEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal course ready event", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{event.Email}
	subject := fmt.Sprintf("Votre cours %q est prêt", event.CourseTitle)

	lines := []string{
		"Bonjour,",
		"",
		fmt.Sprintf("Les supports du module %q ont été générés :", event.CourseTitle),
		"",
	}
	for _, file := range event.Files {
		link := file.FileURL
		if link == models.PlaceholderFileURL {
			link = "disponible depuis votre tableau de bord"
		}
		lines = append(lines, fmt.Sprintf("- %s : %s", file.Title, link))
	}
	lines = append(lines, "", "À bientôt sur CoursGen.")

	return s.sendEmail(to, subject, strings.Join(lines, "\n"))
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.Sender(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Error("failed to close SMTP client", sl.Err(closeErr))
		}
	}()

	if err := client.Mail(s.transport.Sender()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.Sender()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
