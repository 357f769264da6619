package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/httpclient"
)

// EmailRequest is one templated email send.
type EmailRequest struct {
	EmailAddress    string         `json:"email_address"`
	TemplateID      string         `json:"template_id"`
	Personalisation map[string]any `json:"personalisation,omitempty"`
	Reference       string         `json:"reference,omitempty"`
}

// EmailSender abstracts the notification provider so the dispatcher can be
// tested against a fake.
type EmailSender interface {
	SendEmail(ctx context.Context, req EmailRequest) (string, error)
}

// Client talks to a GOV.UK-Notify-style email API. Requests carry a
// short-lived JWT signed with the service's API key.
type Client struct {
	baseURL   string
	serviceID string
	apiKey    []byte
	http      *http.Client
}

func NewClient(baseURL, serviceID, apiKey string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		serviceID: serviceID,
		apiKey:    []byte(apiKey),
		http:      httpclient.HTTPClient,
	}
}

type sendResponse struct {
	ID string `json:"id"`
}

// SendEmail posts one email and returns the provider's notification id.
func (c *Client) SendEmail(ctx context.Context, req EmailRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("notify: marshal payload: %w", err)
	}

	token, err := c.bearerToken()
	if err != nil {
		return "", fmt.Errorf("notify: sign token: %w", err)
	}

	target := c.baseURL + "/v2/notifications/email"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("notify: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("notify: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("notify: send failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("notify: decode response: %w", err)
	}
	return out.ID, nil
}

func (c *Client) bearerToken() (string, error) {
	claims := jwt.MapClaims{
		"iss": c.serviceID,
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.apiKey)
}
