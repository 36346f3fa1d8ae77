package intelinfo

import (
	"context"
	"net/http"

	"github.com/intelinfo/intelinfo-go/internal/tracing"
)

// AuthService handles admin authentication.
type AuthService struct {
	client *Client
}

// Login exchanges admin credentials for a session token. Credentials are
// sent as multipart form fields, matching the backend's login handler.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	return tracing.Trace(ctx, "auth.login", func(ctx context.Context) (*LoginResponse, error) {
		res, err := doJSON[LoginResponse](ctx, s.client, "/login", requestOptions{
			method: http.MethodPost,
			form: &formBody{fields: []formField{
				{"username", username},
				{"password", password},
			}},
		})
		if err != nil {
			return nil, err
		}
		return &res, nil
	})
}
