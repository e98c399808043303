package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultGraphBaseURL = "https://graph.facebook.com/v18.0"

// WhatsAppBusinessClient sends text messages through the WhatsApp
// Business Cloud API. It does not retry, queue, or batch; each resolved
// message produces exactly one send attempt.
type WhatsAppBusinessClient struct {
	// BaseURL can be pointed at a test server; defaults to the Graph API.
	BaseURL string

	accessToken   string
	phoneNumberID string
	httpClient    *http.Client
	logger        *zap.Logger
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppSendRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

func NewWhatsAppBusinessClient(accessToken, phoneNumberID string, logger *zap.Logger) *WhatsAppBusinessClient {
	return &WhatsAppBusinessClient{
		BaseURL:       defaultGraphBaseURL,
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		logger:        logger,
	}
}

// SendMessage posts one text message to the recipient. Non-2xx statuses
// are returned as errors so the caller can log and count the failure.
func (w *WhatsAppBusinessClient) SendMessage(ctx context.Context, to, content string) error {
	url := fmt.Sprintf("%s/%s/messages", w.BaseURL, w.phoneNumberID)
	payload := whatsAppSendRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             whatsAppText{Body: content},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message to %s: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("send message to %s: status %d: %s", to, resp.StatusCode, string(body))
	}

	w.logger.Debug("message sent", zap.String("to", to))
	return nil
}
