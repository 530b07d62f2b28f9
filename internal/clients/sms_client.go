package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// SMS template identifiers understood by the gateway
const (
	TemplateOtpCode      = "hotspot_otp_code"
	TemplateDeviceChange = "hotspot_device_change"
	TemplateSuspension   = "hotspot_suspension"
	TemplateActivation   = "hotspot_activation"
)

// SmsClient handles HTTP communication with the SMS gateway
type SmsClient struct {
	baseURL    string
	apiKey     string
	senderID   string
	httpClient *http.Client
	logger     *logrus.Entry
}

// smsRequest is the API request format for the SMS gateway
type smsRequest struct {
	To       string            `json:"to"`
	SenderID string            `json:"sender_id,omitempty"`
	Template string            `json:"template"`
	Params   map[string]string `json:"params,omitempty"`
}

// NewSmsClient creates a new SMS gateway client
func NewSmsClient(baseURL, apiKey, senderID string, logger *logrus.Logger) *SmsClient {
	return &SmsClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		senderID: senderID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.WithField("component", "clients.sms"),
	}
}

// SendOtpCode delivers a one-time code
func (c *SmsClient) SendOtpCode(ctx context.Context, tenantID, phone, code string, expiresIn time.Duration) error {
	return c.send(ctx, tenantID, &smsRequest{
		To:       phone,
		SenderID: c.senderID,
		Template: TemplateOtpCode,
		Params: map[string]string{
			"code":            code,
			"expires_minutes": fmt.Sprintf("%d", int(expiresIn.Minutes())),
		},
	})
}

// SendDeviceChangeAlert notifies the subscriber that their session moved to a
// new device after a force login.
func (c *SmsClient) SendDeviceChangeAlert(ctx context.Context, tenantID, phone, deviceID string) error {
	return c.send(ctx, tenantID, &smsRequest{
		To:       phone,
		SenderID: c.senderID,
		Template: TemplateDeviceChange,
		Params: map[string]string{
			"device": deviceID,
		},
	})
}

// SendSuspensionNotice notifies the subscriber their account was suspended
func (c *SmsClient) SendSuspensionNotice(ctx context.Context, tenantID, phone, reason string) error {
	return c.send(ctx, tenantID, &smsRequest{
		To:       phone,
		SenderID: c.senderID,
		Template: TemplateSuspension,
		Params: map[string]string{
			"reason": reason,
		},
	})
}

// SendActivationCredentials delivers the initial username after registration
func (c *SmsClient) SendActivationCredentials(ctx context.Context, tenantID, phone, username string) error {
	return c.send(ctx, tenantID, &smsRequest{
		To:       phone,
		SenderID: c.senderID,
		Template: TemplateActivation,
		Params: map[string]string{
			"username": username,
		},
	})
}

// send posts a templated message to the gateway
func (c *SmsClient) send(ctx context.Context, tenantID string, req *smsRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal sms request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/sms/send", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)
	httpReq.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	c.logger.WithFields(logrus.Fields{
		"template":  req.Template,
		"tenant_id": tenantID,
	}).Info("SMS dispatched")
	return nil
}
