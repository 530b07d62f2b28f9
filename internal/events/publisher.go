package events

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Subjects published by the hotspot service
const (
	SubjectSessionEstablished = "hotspot.session.established"
	SubjectDeviceConflict     = "hotspot.session.conflict"
	SubjectSessionCleared     = "hotspot.session.cleared"
	SubjectLinkLoginVerified  = "hotspot.link.verified"
	SubjectFederationLookup   = "hotspot.federation.lookup"
)

var (
	publisher     *Publisher
	publisherOnce sync.Once
	publisherMu   sync.RWMutex
)

// Publisher publishes portal events to NATS for audit and downstream
// consumers. All publish methods are best-effort: a broken connection is
// logged, never propagated into login flows.
type Publisher struct {
	nc     *nats.Conn
	logger *logrus.Entry
}

// Event is the wire format for portal events
type Event struct {
	Subject   string                 `json:"subject"`
	TenantID  string                 `json:"tenant_id"`
	Timestamp time.Time              `json:"timestamp"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// InitPublisher initializes the singleton NATS publisher. With NATS_URL
// unset, event publishing stays disabled and all publish calls are no-ops.
func InitPublisher(logger *logrus.Logger) error {
	var initErr error
	publisherOnce.Do(func() {
		natsURL := os.Getenv("NATS_URL")
		if natsURL == "" {
			logger.Warn("NATS_URL not set, event publishing disabled")
			return
		}

		nc, err := nats.Connect(natsURL,
			nats.Name("hotspot-service"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			initErr = err
			return
		}

		publisherMu.Lock()
		publisher = &Publisher{
			nc:     nc,
			logger: logger.WithField("component", "events.publisher"),
		}
		publisherMu.Unlock()

		logger.Info("NATS events publisher initialized for hotspot-service")
	})
	return initErr
}

// GetPublisher returns the singleton publisher instance, nil when disabled
func GetPublisher() *Publisher {
	publisherMu.RLock()
	defer publisherMu.RUnlock()
	return publisher
}

// Publish sends an event on the given subject. Safe to call on a nil
// receiver so call sites don't have to guard against a disabled publisher.
func (p *Publisher) Publish(subject, tenantID string, fields map[string]interface{}) {
	if p == nil || p.nc == nil {
		return
	}

	event := Event{
		Subject:   subject,
		TenantID:  tenantID,
		Timestamp: time.Now().UTC(),
		Fields:    fields,
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Warn("Failed to marshal event")
		return
	}

	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
	}
}

// IsConnected returns true if connected to NATS
func (p *Publisher) IsConnected() bool {
	return p != nil && p.nc != nil && p.nc.IsConnected()
}

// Close drains and closes the publisher connection
func (p *Publisher) Close() {
	if p != nil && p.nc != nil {
		_ = p.nc.Drain()
	}
}
