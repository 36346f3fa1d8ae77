package intelinfo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// formField is a single multipart field. Fields are written in declaration
// order to keep request bodies reproducible.
type formField struct {
	name  string
	value string
}

// formBody describes a multipart request body: plain fields plus an
// optional file part. The multipart writer owns the content type so the
// boundary is set correctly.
type formBody struct {
	fields []formField
	file   *FormFile
}

// requestOptions configures a single request issued through Client.do.
type requestOptions struct {
	method   string
	query    url.Values
	headers  map[string]string
	jsonBody any
	form     *formBody
}

// do executes one request against the backend and returns the raw response
// body with its content type. A non-2xx status yields a RequestError; a
// transport failure yields a NetworkError naming the base URL. No retries
// are performed at this layer.
func (c *Client) do(ctx context.Context, endpoint string, opts requestOptions) ([]byte, string, error) {
	method := opts.method
	if method == "" {
		method = http.MethodGet
	}

	reqURL := c.baseURL + endpoint
	if len(opts.query) > 0 {
		reqURL += "?" + opts.query.Encode()
	}

	var body io.Reader
	contentType := "application/json"
	switch {
	case opts.form != nil:
		buf := &bytes.Buffer{}
		w := multipart.NewWriter(buf)
		for _, field := range opts.form.fields {
			if err := w.WriteField(field.name, field.value); err != nil {
				return nil, "", fmt.Errorf("failed to write form field %q: %w", field.name, err)
			}
		}
		if file := opts.form.file; file != nil {
			part, err := w.CreateFormFile("file", file.Name)
			if err != nil {
				return nil, "", fmt.Errorf("failed to create file part: %w", err)
			}
			if _, err := io.Copy(part, file.Reader); err != nil {
				return nil, "", fmt.Errorf("failed to write file part: %w", err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to finalize form body: %w", err)
		}
		body = buf
		contentType = w.FormDataContentType()
	case opts.jsonBody != nil:
		data, err := json.Marshal(opts.jsonBody)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.headers {
		req.Header.Set(k, v)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, "", NewNetworkError(c.baseURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", NewNetworkError(c.baseURL, err)
	}

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", NewRequestError(resp.StatusCode, string(respBody))
	}
	return respBody, resp.Header.Get("Content-Type"), nil
}

// doJSON executes a request and unmarshals the JSON response into T.
func doJSON[T any](ctx context.Context, c *Client, endpoint string, opts requestOptions) (T, error) {
	var result T
	body, _, err := c.do(ctx, endpoint, opts)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result, nil
}

// doText executes a request and returns the response body as text, for
// endpoints that serve CSV or arbitrary probe output.
func (c *Client) doText(ctx context.Context, endpoint string, opts requestOptions) (string, error) {
	body, _, err := c.do(ctx, endpoint, opts)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
