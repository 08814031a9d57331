package notify

import (
	"context"
	"time"

	"github.com/AnshRaj112/feedback-backend/internal/models"
)

// Message kinds sent per submission.
const (
	KindUser     = "user"
	KindOperator = "operator"
)

// Delivery is the outcome of one message.
type Delivery struct {
	Kind string
	To   string
	Err  error
}

// Notifier sends the user acknowledgment and then the operator alert.
type Notifier struct {
	sender   Sender
	composer *Composer
	timeout  time.Duration
}

// NewNotifier returns a Notifier bounding each send by timeout (unbounded
// when zero).
func NewNotifier(sender Sender, composer *Composer, timeout time.Duration) *Notifier {
	return &Notifier{sender: sender, composer: composer, timeout: timeout}
}

// NotifySubmission sends both messages in order. A failed first send does not
// stop the second; each outcome is reported separately.
func (n *Notifier) NotifySubmission(ctx context.Context, rec models.Feedback) []Delivery {
	return []Delivery{
		n.deliver(ctx, KindUser, rec.Email, func() (Message, error) { return n.composer.UserAcknowledgment(rec) }),
		n.deliver(ctx, KindOperator, n.composer.Operator(), func() (Message, error) { return n.composer.OperatorAlert(rec) }),
	}
}

func (n *Notifier) deliver(ctx context.Context, kind, to string, compose func() (Message, error)) Delivery {
	d := Delivery{Kind: kind, To: to}
	msg, err := compose()
	if err != nil {
		d.Err = err
		return d
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	d.Err = n.sender.Send(ctx, msg)
	return d
}
