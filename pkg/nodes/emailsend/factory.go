package emailsend

import (
	"context"

	"github.com/dukex/operion-assistant/pkg/protocol"
)

// EmailSendNodeFactory creates EmailSendNode instances.
type EmailSendNodeFactory struct {
	sender      Sender
	defaultFrom string
}

// NewEmailSendNodeFactory creates a new factory instance.
func NewEmailSendNodeFactory(sender Sender, defaultFrom string) *EmailSendNodeFactory {
	return &EmailSendNodeFactory{sender: sender, defaultFrom: defaultFrom}
}

// Create creates a new EmailSendNode instance.
func (f *EmailSendNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewEmailSendNode(id, config, f.sender, f.defaultFrom)
}

// ID returns the factory ID.
func (f *EmailSendNodeFactory) ID() string {
	return "email_send"
}

// Name returns the factory name.
func (f *EmailSendNodeFactory) Name() string {
	return "Send Email"
}

// Description returns the factory description.
func (f *EmailSendNodeFactory) Description() string {
	return "Sends a plain text email over SMTP"
}
