package intelinfo

import (
	"context"
	"net/http"
	"net/url"

	"github.com/intelinfo/intelinfo-go/internal/tracing"
)

// MessageService handles the contact-message inbox. Anyone can submit a
// message; listing and export require an admin token. Messages are never
// pushed over the live channel.
type MessageService struct {
	client *Client
}

// Create submits a contact form message.
func (s *MessageService) Create(ctx context.Context, input MessageInput) (*Message, error) {
	return tracing.Trace(ctx, "messages.create", func(ctx context.Context) (*Message, error) {
		res, err := doJSON[Message](ctx, s.client, "/messages", requestOptions{
			method:   http.MethodPost,
			jsonBody: input,
		})
		if err != nil {
			return nil, err
		}
		return &res, nil
	})
}

// List fetches the inbox. The token is passed as a query parameter; when
// empty the request is sent without one and the server decides.
func (s *MessageService) List(ctx context.Context, token string) ([]Message, error) {
	return tracing.Trace(ctx, "messages.list", func(ctx context.Context) ([]Message, error) {
		opts := requestOptions{}
		if token != "" {
			opts.query = url.Values{"token": {token}}
		}
		return doJSON[[]Message](ctx, s.client, "/messages", opts)
	})
}

// ExportCSV downloads the inbox as CSV text.
func (s *MessageService) ExportCSV(ctx context.Context, token string) (string, error) {
	return tracing.Trace(ctx, "messages.export_csv", func(ctx context.Context) (string, error) {
		return s.client.doText(ctx, "/messages.csv", requestOptions{
			query: url.Values{"token": {token}},
		})
	})
}
