package notifier

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Notifier sends transactional email through the provider's JSON API.
// Callers treat every send as best-effort: failures are logged by the
// caller and never fail the primary operation.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

type emailNotifier struct {
	client *resty.Client
	from   string
	log    *zap.SugaredLogger
}

// New builds a Notifier against a Resend-compatible API. With an empty API
// key it degrades to a no-op that only logs, so local development works
// without credentials.
func New(baseURL, apiKey, from string, log *zap.SugaredLogger) Notifier {
	if apiKey == "" {
		return &noopNotifier{log: log}
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &emailNotifier{client: client, from: from, log: log}
}

func (n *emailNotifier) Send(ctx context.Context, to, subject, html string) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"from":    n.from,
			"to":      []string{to},
			"subject": subject,
			"html":    html,
		}).
		Post("/emails")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode(), resp.String())
	}
	n.log.Infow("email sent", "to", to, "subject", subject)
	return nil
}

type noopNotifier struct {
	log *zap.SugaredLogger
}

func (n *noopNotifier) Send(_ context.Context, to, subject, _ string) error {
	n.log.Infow("email skipped, no EMAIL_API_KEY", "to", to, "subject", subject)
	return nil
}
