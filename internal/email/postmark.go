package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// PostmarkAPIURL is the Postmark single-message endpoint.
const PostmarkAPIURL = "https://api.postmarkapp.com/email"

// PostmarkSender implements Sender using the Postmark HTTP API.
type PostmarkSender struct {
	token    string
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

type postmarkEmail struct {
	From          string           `json:"From"`
	To            string           `json:"To"`
	Subject       string           `json:"Subject"`
	HtmlBody      string           `json:"HtmlBody,omitempty"`
	TextBody      string           `json:"TextBody,omitempty"`
	Headers       []postmarkHeader `json:"Headers,omitempty"`
	MessageStream string           `json:"MessageStream"`
}

type postmarkHeader struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type postmarkResponse struct {
	To        string `json:"To"`
	MessageID string `json:"MessageID"`
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
}

// NewPostmarkSender creates a Postmark sender authenticated with a server token.
// An empty endpoint uses PostmarkAPIURL.
func NewPostmarkSender(token, endpoint string, logger zerolog.Logger) *PostmarkSender {
	if endpoint == "" {
		endpoint = PostmarkAPIURL
	}
	return &PostmarkSender{
		token:    token,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger.With().Str("component", "postmark").Logger(),
	}
}

// Send delivers email on the transactional "outbound" stream.
func (p *PostmarkSender) Send(ctx context.Context, email *Email) (string, error) {
	payload := postmarkEmail{
		From:          email.From,
		To:            strings.Join(email.To, ","),
		Subject:       email.Subject,
		HtmlBody:      email.HTMLBody,
		TextBody:      email.TextBody,
		MessageStream: "outbound",
	}

	if len(email.Headers) > 0 {
		headers := make([]postmarkHeader, 0, len(email.Headers))
		for name, value := range email.Headers {
			headers = append(headers, postmarkHeader{Name: name, Value: value})
		}
		payload.Headers = headers
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Error().Err(err).Strs("to", email.To).Msg("failed to send email")
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var result postmarkResponse
	if err := json.Unmarshal(body, &result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("postmark API error (status %d): %s", resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || result.ErrorCode != 0 {
		p.logger.Error().
			Int("status", resp.StatusCode).
			Int("error_code", result.ErrorCode).
			Strs("to", email.To).
			Msg(result.Message)
		return "", fmt.Errorf("postmark error %d: %s", result.ErrorCode, result.Message)
	}

	p.logger.Info().Strs("to", email.To).Str("message_id", result.MessageID).Msg("email sent")
	return result.MessageID, nil
}
