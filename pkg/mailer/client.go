// Package mailer sends transactional email through the SendGrid v3 API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.sendgrid.com"
	sendPath                   = "/v3/mail/send"
	errorBodyReadLimit   int64 = 1024
	WelcomeSubject             = "Bienvenue à AfriFood Newsletter"
	defaultRequestTimeout      = 10 * time.Second
)

var errAPIKeyRequired = errors.New("sendgrid api key is required")

// Client posts messages to SendGrid.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       Address
}

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

func NewClient(apiKey string, from Address, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	if _, err := mail.ParseAddress(from.Email); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}

	c := &Client{
		apiKey:     key,
		baseURL:    defaultBaseURL,
		from:       from,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Message is one outgoing HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             Address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []Address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers msg. SendGrid answers 202 when the message is queued.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "mailer not configured")
	}
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid recipient email")
	}

	payload, err := json.Marshal(sendRequest{
		Personalizations: []personalization{{To: []Address{{Email: msg.To}}}},
		From:             c.from,
		Subject:          msg.Subject,
		Content:          []content{{Type: "text/html", Value: msg.HTML}},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal mail request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build mail request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send mail request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("sendgrid returned %d", resp.StatusCode)).
			WithDetails(map[string]any{"body": strings.TrimSpace(string(body))})
	}
	return nil
}

// SendWelcome sends the newsletter welcome email.
func (c *Client) SendWelcome(ctx context.Context, email string) error {
	return c.Send(ctx, Message{
		To:      email,
		Subject: WelcomeSubject,
		HTML:    WelcomeHTML(),
	})
}
