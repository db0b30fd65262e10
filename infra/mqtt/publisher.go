// Package mqtt publishes simulation results and safety alerts to an MQTT
// broker using Eclipse Paho.
package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/enoplan/bessim/core/alert"
	"github.com/enoplan/bessim/core/kpi"
	"github.com/enoplan/bessim/infra/logger"
)

// Publisher sends simulation results to interested consumers.
type Publisher interface {
	PublishReport(runID string, report kpi.Report) error
	PublishAlert(runID string, a alert.Alert) error
	Close()
}

type reportMessage struct {
	RunID  string     `json:"run_id"`
	Time   time.Time  `json:"time"`
	Report kpi.Report `json:"report"`
}

type alertMessage struct {
	RunID string      `json:"run_id"`
	Alert alert.Alert `json:"alert"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoPublisher implements Publisher against a live broker.
type PahoPublisher struct {
	cli         pahoClient
	reportTopic string
	alertTopic  string
	qos         byte
	log         logger.Logger
}

// NewPahoPublisher connects to the configured broker.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New("mqtt-publisher")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PahoPublisher{
		cli:         c,
		reportTopic: cfg.ReportTopic,
		alertTopic:  cfg.AlertTopic,
		qos:         cfg.QoS,
		log:         log,
	}, nil
}

// PublishReport publishes the KPI report of a completed run as JSON.
func (p *PahoPublisher) PublishReport(runID string, report kpi.Report) error {
	msg := reportMessage{RunID: runID, Time: time.Now(), Report: report}
	return p.publish(p.reportTopic, msg)
}

// PublishAlert publishes a safety alert as JSON.
func (p *PahoPublisher) PublishAlert(runID string, a alert.Alert) error {
	return p.publish(p.alertTopic, alertMessage{RunID: runID, Alert: a})
}

func (p *PahoPublisher) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	token := p.cli.Publish(topic, p.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Close disconnects from the broker.
func (p *PahoPublisher) Close() {
	p.cli.Disconnect(250)
}

// NopPublisher drops every message. Used when MQTT is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishReport(string, kpi.Report) error { return nil }

func (NopPublisher) PublishAlert(string, alert.Alert) error { return nil }

func (NopPublisher) Close() {}

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	mu      sync.Mutex
	Reports map[string]kpi.Report
	Alerts  []alert.Alert
	Fail    bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Reports: make(map[string]kpi.Report)}
}

// PublishReport records the report or returns an error if configured to fail.
func (m *MockPublisher) PublishReport(runID string, report kpi.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Reports[runID] = report
	return nil
}

// PublishAlert records the alert or returns an error if configured to fail.
func (m *MockPublisher) PublishAlert(_ string, a alert.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Alerts = append(m.Alerts, a)
	return nil
}

// Close is a no-op.
func (m *MockPublisher) Close() {}
