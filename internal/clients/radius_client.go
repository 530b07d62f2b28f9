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

// RadiusSession is the authorization record pushed into the RADIUS backend
// after a session is committed locally.
type RadiusSession struct {
	TenantID     string     `json:"tenant_id"`
	Username     string     `json:"username"`
	SessionToken string     `json:"session_token"`
	DeviceID     string     `json:"calling_station_id"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// RadiusClient handles HTTP communication with the RADIUS provisioning
// backend. The portal's own session store stays authoritative for web access
// control; these pushes are best-effort mirroring.
type RadiusClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewRadiusClient creates a new RADIUS provisioning client
func NewRadiusClient(baseURL, apiKey string, logger *logrus.Logger) *RadiusClient {
	return &RadiusClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.WithField("component", "clients.radius"),
	}
}

// Push mirrors an established session into the RADIUS backend
func (c *RadiusClient) Push(ctx context.Context, session RadiusSession) error {
	if err := c.post(ctx, "/api/v1/sessions", session); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"username": session.Username,
		"device":   session.DeviceID,
	}).Info("Session pushed to RADIUS")
	return nil
}

// Teardown removes the accounting session for a username on logout
func (c *RadiusClient) Teardown(ctx context.Context, tenantID, username string) error {
	payload := map[string]string{
		"tenant_id": tenantID,
		"username":  username,
	}
	if err := c.post(ctx, "/api/v1/sessions/teardown", payload); err != nil {
		return err
	}

	c.logger.WithField("username", username).Info("RADIUS session torn down")
	return nil
}

func (c *RadiusClient) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal radius request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("radius backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("radius backend returned status %d", resp.StatusCode)
	}
	return nil
}
