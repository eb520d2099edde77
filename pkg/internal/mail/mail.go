// Package mail sends outbound mail for the folivafy-mail system collection
// worker (§6). The SMTP call itself follows the teacher pack's own
// precedent for this concern — stdlib net/smtp — wrapped in a circuit
// breaker so a flaky mail relay cannot back up the worker's tick.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/foliva/docengine/pkg/configs"
)

// Sender delivers plain-text mail over SMTP, breaking the circuit after a
// run of failures so the mail worker's tick fails fast instead of hanging
// on a dead relay.
type Sender struct {
	cfg configs.MailConfig
	cb  *gobreaker.CircuitBreaker
}

func NewSender(cfg configs.MailConfig) *Sender {
	settings := gobreaker.Settings{
		Name:        "mail-sender",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &Sender{cfg: cfg, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Send delivers one message to the given recipients. ctx is accepted for
// cancellation symmetry with the rest of the facade; net/smtp itself has
// no context-aware API.
func (s *Sender) Send(_ context.Context, to []string, subject, body string) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.sendOnce(to, subject, body)
	})

	return err
}

func (s *Sender) sendOnce(to []string, subject, body string) error {
	message := fmt.Appendf(nil, "To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		strings.Join(to, ","), s.cfg.From, subject, body)

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	return smtp.SendMail(addr, auth, s.cfg.From, to, message)
}
