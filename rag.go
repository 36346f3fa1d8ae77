package intelinfo

import (
	"context"
	"net/http"

	"github.com/intelinfo/intelinfo-go/internal/tracing"
)

// RAGService talks to the retrieval-augmented chat endpoints.
type RAGService struct {
	client *Client
}

// groqKeyHeader carries an optional caller-supplied model API key.
const groqKeyHeader = "X-Groq-Key"

type chatRequest struct {
	Query string `json:"query"`
}

// Ingest submits documents for indexing. Ingestion is best-effort: callers
// whose primary flow does not depend on it should log the error and move
// on rather than fail.
func (s *RAGService) Ingest(ctx context.Context, input IngestInput) error {
	_, err := tracing.Trace(ctx, "rag.ingest", func(ctx context.Context) (struct{}, error) {
		_, _, err := s.client.do(ctx, "/rag/ingest", requestOptions{
			method:   http.MethodPost,
			jsonBody: input,
		})
		return struct{}{}, err
	})
	return err
}

// Chat asks the retrieval chat a question. groqKey is optional; when set it
// is forwarded in the X-Groq-Key header.
func (s *RAGService) Chat(ctx context.Context, query string, groqKey string) (*ChatResponse, error) {
	return tracing.Trace(ctx, "rag.chat", func(ctx context.Context) (*ChatResponse, error) {
		opts := requestOptions{
			method:   http.MethodPost,
			jsonBody: chatRequest{Query: query},
		}
		if groqKey != "" {
			opts.headers = map[string]string{groqKeyHeader: groqKey}
		}
		res, err := doJSON[ChatResponse](ctx, s.client, "/rag/chat", opts)
		if err != nil {
			return nil, err
		}
		return &res, nil
	})
}
