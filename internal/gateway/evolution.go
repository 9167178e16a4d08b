// Package gateway talks to the Evolution API, the HTTP bridge in front of
// WhatsApp. All requests carry the instance apikey header.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	instance   string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, instance string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		instance:   instance,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type apiError struct {
	Status   int `json:"status"`
	Response struct {
		Message json.RawMessage `json:"message"`
	} `json:"response"`
}

// SendText delivers a text message to a phone number through the configured
// instance. A non-2xx response is an error carrying whatever detail the API
// returned.
func (c *Client) SendText(ctx context.Context, number, text string) error {
	body, err := json.Marshal(sendTextRequest{Number: number, Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, c.instance)
	resp, err := c.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("send failed: %s", readError(resp))
	}
	return nil
}

// ConnectionState reports the WhatsApp connection state of the instance
// ("open", "connecting", "close").
func (c *Client) ConnectionState(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/instance/connectionState/%s", c.baseURL, c.instance)
	resp, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("connection state check failed: %s", readError(resp))
	}

	var payload struct {
		Instance struct {
			State string `json:"state"`
		} `json:"instance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode connection state: %w", err)
	}
	return payload.Instance.State, nil
}

// WebhookSettings mirrors the Evolution API webhook configuration object.
type WebhookSettings struct {
	Enabled bool     `json:"enabled"`
	URL     string   `json:"url"`
	Events  []string `json:"events"`
}

// ConfigureWebhook points the instance's webhook at the given URL for
// inbound message events.
func (c *Client) ConfigureWebhook(ctx context.Context, webhookURL string) error {
	body, err := json.Marshal(map[string]WebhookSettings{
		"webhook": {
			Enabled: true,
			URL:     webhookURL,
			Events:  []string{"MESSAGES_UPSERT"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook config: %w", err)
	}

	url := fmt.Sprintf("%s/webhook/set/%s", c.baseURL, c.instance)
	resp, err := c.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook configuration failed: %s", readError(resp))
	}
	return nil
}

// WebhookConfig fetches the instance's current webhook configuration.
func (c *Client) WebhookConfig(ctx context.Context) (*WebhookSettings, error) {
	url := fmt.Sprintf("%s/webhook/find/%s", c.baseURL, c.instance)
	resp, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webhook lookup failed: %s", readError(resp))
	}

	var settings WebhookSettings
	if err := json.NewDecoder(resp.Body).Decode(&settings); err != nil {
		return nil, fmt.Errorf("failed to decode webhook config: %w", err)
	}
	return &settings, nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to evolution api failed: %w", err)
	}
	return resp, nil
}

// readError extracts the most useful detail from an error response body:
// the nested response.message when present, the raw body otherwise.
func readError(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(raw) == 0 {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}

	var apiErr apiError
	if json.Unmarshal(raw, &apiErr) == nil && len(apiErr.Response.Message) > 0 {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, string(apiErr.Response.Message))
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, string(raw))
}
