package account

import "context"

// MessageKind tags the outbound notification raised by a lifecycle operation.
type MessageKind string

const (
	// MessageConfirm asks the account holder to confirm their email.
	MessageConfirm MessageKind = "CONFIRM"
	// MessageRevive asks a returning account holder to re-confirm.
	MessageRevive MessageKind = "REVIVE"
	// MessageResetPassword carries the password reset token.
	MessageResetPassword MessageKind = "RESETPASSWORD"
)

// Notifier delivers lifecycle notifications. Delivery is fire-and-forget: a
// failed notification never rolls back a committed state transition.
type Notifier interface {
	Notify(ctx context.Context, badge *Badge, kind MessageKind) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, badge *Badge, kind MessageKind) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, badge *Badge, kind MessageKind) error {
	if f == nil {
		return nil
	}
	return f(ctx, badge, kind)
}

type logNotifier struct {
	logger Logger
}

func (n logNotifier) Notify(_ context.Context, badge *Badge, kind MessageKind) error {
	email := ""
	if badge != nil {
		email = badge.Email
	}
	n.logger.Info("notify %s to %s", kind, email)
	return nil
}

func normalizeNotifier(n Notifier, logger Logger) Notifier {
	if n == nil {
		return logNotifier{logger: logger}
	}
	return n
}
