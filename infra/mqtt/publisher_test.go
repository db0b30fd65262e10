package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/enoplan/bessim/core/alert"
	"github.com/enoplan/bessim/core/kpi"
	corelogger "github.com/enoplan/bessim/core/logger"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

type fakeClient struct {
	topics   []string
	payloads [][]byte
	err      error
}

func (f *fakeClient) IsConnected() bool   { return true }
func (f *fakeClient) Connect() paho.Token { return fakeToken{} }
func (f *fakeClient) Disconnect(uint)     {}
func (f *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload.([]byte))
	return fakeToken{err: f.err}
}

func newTestPublisher(cli *fakeClient) *PahoPublisher {
	return &PahoPublisher{
		cli:         cli,
		reportTopic: "bessim/report",
		alertTopic:  "bessim/alert",
		log:         corelogger.Nop{},
	}
}

func TestPublishReport(t *testing.T) {
	cli := &fakeClient{}
	pub := newTestPublisher(cli)

	if err := pub.PublishReport("run-1", kpi.Report{TotalPVKWh: 12}); err != nil {
		t.Fatalf("publish report: %v", err)
	}
	if len(cli.topics) != 1 || cli.topics[0] != "bessim/report" {
		t.Fatalf("unexpected topics %v", cli.topics)
	}
	var msg reportMessage
	if err := json.Unmarshal(cli.payloads[0], &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.RunID != "run-1" || msg.Report.TotalPVKWh != 12 {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestPublishAlert(t *testing.T) {
	cli := &fakeClient{}
	pub := newTestPublisher(cli)

	a := alert.Alert{Rule: "smoke_flag", Metric: "fire_alarm1", Value: 1}
	if err := pub.PublishAlert("run-1", a); err != nil {
		t.Fatalf("publish alert: %v", err)
	}
	if cli.topics[0] != "bessim/alert" {
		t.Errorf("alert published to %s", cli.topics[0])
	}
}

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher()
	if err := m.PublishReport("r", kpi.Report{}); err != nil {
		t.Fatalf("mock publish: %v", err)
	}
	if _, ok := m.Reports["r"]; !ok {
		t.Error("report not recorded")
	}
	m.Fail = true
	if err := m.PublishReport("r2", kpi.Report{}); err == nil {
		t.Error("expected failure")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Error("enabled config without broker must fail validation")
	}
	cfg.Broker = "tcp://localhost:1883"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
