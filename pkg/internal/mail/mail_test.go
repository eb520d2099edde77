package mail_test

import (
	"context"
	"testing"

	"github.com/foliva/docengine/pkg/configs"
	"github.com/foliva/docengine/pkg/internal/mail"
)

func TestNewSenderReturnsNonNil(t *testing.T) {
	sender := mail.NewSender(configs.MailConfig{Host: "localhost", Port: 2525, From: "no-reply@folivafy.local"})
	if sender == nil {
		t.Fatal("NewSender returned nil")
	}
}

// TestSendFailsFastAgainstAnUnreachableRelay exercises the plain failure
// path (no listener on the port): SendMail surfaces a connection error
// rather than hanging, and Send propagates it unwrapped.
func TestSendFailsFastAgainstAnUnreachableRelay(t *testing.T) {
	sender := mail.NewSender(configs.MailConfig{Host: "127.0.0.1", Port: 1, From: "no-reply@folivafy.local"})

	err := sender.Send(context.Background(), []string{"bob@example.com"}, "subject", "body")
	if err == nil {
		t.Fatal("expected an error dialing a relay with nothing listening")
	}
}
