// Package notify composes and delivers the emails sent for each feedback
// submission.
package notify

import (
	"context"
	"errors"
)

// ErrDisabled is returned by the disabled sender when no SMTP account is
// configured.
var ErrDisabled = errors.New("email notifications are disabled")

// Message is one rendered email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers a rendered message or fails with a transport error.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Disabled is the Sender used when email is not configured.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) error { return ErrDisabled }
