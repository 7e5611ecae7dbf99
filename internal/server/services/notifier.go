package services

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/securedoc/internal/logging"
)

// UserProvisioned is emitted after an account is created with a temporary
// credential the new user must receive out of band.
type UserProvisioned struct {
	Email          string
	TempCredential string
}

// Notifier delivers provisioning events. Delivery is best effort; the
// caller never waits for it to succeed.
type Notifier interface {
	UserProvisioned(ctx context.Context, ev UserProvisioned) error
}

// LogNotifier records that a user was provisioned without revealing the
// credential. It is the server default when no mail relay exists.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) UserProvisioned(ctx context.Context, ev UserProvisioned) error {
	n.log.Info(ctx, "user provisioned", "email", ev.Email)
	return nil
}

// WriterNotifier prints the event, credential included, to w. The admin CLI
// uses it to hand the credential to the operator.
type WriterNotifier struct {
	w io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) UserProvisioned(_ context.Context, ev UserProvisioned) error {
	_, err := fmt.Fprintf(n.w, "user %s provisioned, temporary password: %s\n", ev.Email, ev.TempCredential)
	return err
}
