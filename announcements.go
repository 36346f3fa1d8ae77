package intelinfo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/intelinfo/intelinfo-go/internal/tracing"
)

// AnnouncementService manages the announcement board. Listing is public;
// creation and deletion require an admin token.
type AnnouncementService struct {
	client *Client
}

// CreateAnnouncementInput describes a new announcement. Title and Content
// are optional on the wire and omitted from the form when empty. File
// attaches media for image and video kinds.
type CreateAnnouncementInput struct {
	Kind    AnnouncementKind
	Title   string
	Content string
	File    *FormFile
}

// List fetches the full announcement list in server-defined order.
func (s *AnnouncementService) List(ctx context.Context) ([]Announcement, error) {
	return tracing.Trace(ctx, "announcements.list", func(ctx context.Context) ([]Announcement, error) {
		return doJSON[[]Announcement](ctx, s.client, "/announcements", requestOptions{})
	})
}

// Create posts a new announcement as a multipart form. The created entry is
// broadcast by the server to every connected live channel.
func (s *AnnouncementService) Create(ctx context.Context, input CreateAnnouncementInput, token string) (*Announcement, error) {
	return tracing.Trace(ctx, "announcements.create", func(ctx context.Context) (*Announcement, error) {
		fields := []formField{{"kind", string(input.Kind)}}
		if input.Title != "" {
			fields = append(fields, formField{"title", input.Title})
		}
		if input.Content != "" {
			fields = append(fields, formField{"content", input.Content})
		}
		if token != "" {
			fields = append(fields, formField{"token", token})
		}

		res, err := doJSON[Announcement](ctx, s.client, "/announcements", requestOptions{
			method: http.MethodPost,
			form:   &formBody{fields: fields, file: input.File},
		})
		if err != nil {
			return nil, err
		}
		return &res, nil
	})
}

// Delete removes an announcement by id. The removal is broadcast by the
// server to every connected live channel.
func (s *AnnouncementService) Delete(ctx context.Context, id int64, token string) error {
	_, err := tracing.Trace(ctx, "announcements.delete", func(ctx context.Context) (struct{}, error) {
		_, _, err := s.client.do(ctx, fmt.Sprintf("/announcements/%d", id), requestOptions{
			method: http.MethodDelete,
			query:  url.Values{"token": {token}},
		})
		return struct{}{}, err
	})
	return err
}
