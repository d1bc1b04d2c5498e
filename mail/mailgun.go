package mail

import (
	"context"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends through the Mailgun HTTP API.
type Mailgun struct {
	domain  string
	apiKey  string
	apiBase string
	from    string
}

// NewMailgun configures a Mailgun sender. apiBase selects the regional API
// endpoint; pass mailgun.APIBase or mailgun.APIBaseEU.
func NewMailgun(domain, apiKey, apiBase, from string) *Mailgun {
	return &Mailgun{
		domain:  domain,
		apiKey:  apiKey,
		apiBase: apiBase,
		from:    from,
	}
}

func (m *Mailgun) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	mg := mailgun.NewMailgun(m.domain, m.apiKey)
	if m.apiBase != "" {
		mg.SetAPIBase(m.apiBase)
	}

	message := mg.NewMessage(m.from, subject, textBody, to)
	if htmlBody != "" {
		message.SetHtml(htmlBody)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, _, err := mg.Send(ctx, message)
	return err
}
