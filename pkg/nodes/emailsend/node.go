// Package emailsend provides the email node that sends a message over SMTP.
package emailsend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/operion-assistant/pkg/log"
	mail "github.com/wneessen/go-mail"
)

// EmailSendNode sends one plain text email.
type EmailSendNode struct {
	id      string
	sender  Sender
	from    string
	to      string
	cc      []string
	subject string
	body    string
}

// NewEmailSendNode creates a new email node from rendered parameters. The sender address
// falls back to defaultFrom when the node does not set from_email.
func NewEmailSendNode(id string, config map[string]any, sender Sender, defaultFrom string) (*EmailSendNode, error) {
	node := &EmailSendNode{
		id:     id,
		sender: sender,
		from:   defaultFrom,
	}

	for field, target := range map[string]*string{
		"to_email": &node.to,
		"subject":  &node.subject,
		"body":     &node.body,
	} {
		value, ok := config[field].(string)
		if !ok || strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("missing required field '%s'", field)
		}

		*target = strings.TrimSpace(value)
	}

	if from, ok := config["from_email"].(string); ok && from != "" {
		node.from = from
	}

	if node.from == "" {
		return nil, errors.New("no sender address: set from_email or configure a default sender")
	}

	switch cc := config["cc"].(type) {
	case []string:
		node.cc = cc
	case []any:
		for _, addr := range cc {
			if s, ok := addr.(string); ok && s != "" {
				node.cc = append(node.cc, s)
			}
		}
	case string:
		if cc != "" {
			node.cc = []string{cc}
		}
	}

	return node, nil
}

// ID returns the node ID.
func (n *EmailSendNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *EmailSendNode) Type() string {
	return "email_send"
}

// Execute composes and sends the email.
func (n *EmailSendNode) Execute(ctx context.Context) (map[string]any, error) {
	msg, err := n.message()
	if err != nil {
		return nil, err
	}

	err = n.sender.Send(ctx, msg)
	if err != nil {
		return nil, err
	}

	recipients := append([]string{n.to}, n.cc...)

	log.FromContext(ctx, slog.Default()).InfoContext(ctx, "Email sent", "recipients", len(recipients))

	return map[string]any{
		"to":         n.to,
		"subject":    n.subject,
		"recipients": recipients,
		"sent":       true,
	}, nil
}

func (n *EmailSendNode) message() (*mail.Msg, error) {
	msg := mail.NewMsg()

	err := msg.From(n.from)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", n.from, err)
	}

	err = msg.To(n.to)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", n.to, err)
	}

	if len(n.cc) > 0 {
		err = msg.Cc(n.cc...)
		if err != nil {
			return nil, fmt.Errorf("invalid cc address: %w", err)
		}
	}

	msg.Subject(n.subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, n.body)

	return msg, nil
}
