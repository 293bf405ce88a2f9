package words

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/anagrams-go/internal/dependencies/random"
)

// DefaultTimeout bounds every words API call
const DefaultTimeout = 10 * time.Second

// APIClient fetches round data from a remote words API
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	random     random.Random
	logger     *slog.Logger
}

type wordsRequest struct {
	Length int `json:"length"`
}

type lettersRequest struct {
	Letters string `json:"letters"`
}

type wordsResponse struct {
	Words []string `json:"words"`
}

// NewAPIClient creates a client for the words API rooted at baseURL
func NewAPIClient(baseURL string, timeout time.Duration, rnd random.Random, logger *slog.Logger) *APIClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		random:     rnd,
		logger:     logger.With(slog.String("component", "words_api")),
	}
}

// RandomWord picks one of the words of the given length offered by the API
func (c *APIClient) RandomWord(ctx context.Context, length int) (string, error) {
	words, err := c.post(ctx, "/api/words", wordsRequest{Length: length})
	if err != nil {
		return "", err
	}
	if len(words) == 0 {
		return "", fmt.Errorf("no words of length %d: %w", length, ErrUnavailable)
	}
	return words[c.random.Intn(len(words))], nil
}

// Anagrams returns every word the API can build from the letters of word
func (c *APIClient) Anagrams(ctx context.Context, word string) ([]string, error) {
	return c.post(ctx, "/api/anagrams/letters", lettersRequest{Letters: word})
}

func (c *APIClient) post(ctx context.Context, path string, body any) ([]string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("words api request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s: %v: %w", path, err, ErrUnavailable)
	}
	defer resp.Body.Close()

	c.logger.Debug("words api request",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d: %w", path, resp.StatusCode, ErrUnavailable)
	}

	var decoded wordsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%s: decode: %v: %w", path, err, ErrUnavailable)
	}
	return decoded.Words, nil
}
