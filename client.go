package intelinfo

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// defaultTimeout bounds every request when the caller does not supply an
// http.Client of their own.
const defaultTimeout = 30 * time.Second

// Options configures a Client. The zero value targets the production
// backend with a fresh HTTP client and no logging.
type Options struct {
	// BaseURL is the backend origin. Defaults to DefaultBaseURL; use
	// BaseURLFromEnv to honor the environment override.
	BaseURL string
	// HTTPClient is used for all requests when set. Timeout is ignored
	// in that case; the caller owns the transport configuration.
	HTTPClient *http.Client
	// Timeout bounds each request when the client constructs its own
	// http.Client. Defaults to defaultTimeout.
	Timeout time.Duration
	// Headers are set on every request.
	Headers map[string]string
	// Logger receives per-request debug logging and dropped-frame
	// warnings. Defaults to a nop logger.
	Logger *zap.Logger
}

// Client is the single point of contact for the backend. Endpoint groups
// are exposed as services; all of them share the same base URL, transport
// and logger.
type Client struct {
	baseURL string
	client  *http.Client
	headers map[string]string
	logger  *zap.Logger

	Health        *HealthService
	Auth          *AuthService
	Announcements *AnnouncementService
	Messages      *MessageService
	RAG           *RAGService
}

// New constructs a Client from options, applying defaults for anything
// unset.
func New(options Options) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	client := options.HTTPClient
	if client == nil {
		timeout := options.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	headers := map[string]string{}
	for k, v := range options.Headers {
		headers[k] = v
	}

	c := &Client{
		baseURL: baseURL,
		client:  client,
		headers: headers,
		logger:  logger,
	}
	c.Health = &HealthService{client: c}
	c.Auth = &AuthService{client: c}
	c.Announcements = &AnnouncementService{client: c}
	c.Messages = &MessageService{client: c}
	c.RAG = &RAGService{client: c}
	return c
}

// BaseURL returns the resolved backend origin this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}
