// Package mail defines the outbound mail transport boundary and ships a
// Mailgun-backed implementation plus an in-memory capture sender for tests.
package mail

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Sender delivers one rendered message. Implementations either send or fail;
// the engine never retries on its own.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// Message is one captured outbound mail.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Capture records messages instead of sending them. Useful in tests and
// local development. Safe for concurrent use.
type Capture struct {
	mu       sync.Mutex
	messages []Message

	// FailWith, when set, is returned by Send after the message has been
	// recorded, simulating a transport that accepted the payload but failed
	// to deliver.
	FailWith error
}

func (c *Capture) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, Message{
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	return c.FailWith
}

// Messages returns a copy of everything sent so far.
func (c *Capture) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// VerificationMessage composes the subject and bodies for a verification
// code mail. Deliberately plain: anything fancier belongs to a real template
// layer outside this engine.
func VerificationMessage(to, code string, ttl time.Duration) (subject, htmlBody, textBody string) {
	minutes := int(ttl.Minutes())
	subject = "Verify Your Email Address"
	textBody = fmt.Sprintf(
		"Your verification code is %s. It expires in %d minutes.\n\nIf you did not request this, ignore this message.",
		code, minutes,
	)
	htmlBody = fmt.Sprintf(
		"<p>Your verification code is <strong>%s</strong>.</p><p>It expires in %d minutes.</p><p>If you did not request this, ignore this message.</p>",
		code, minutes,
	)
	return subject, htmlBody, textBody
}
