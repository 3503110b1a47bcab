package mqtt

import (
	"context"
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/smartcommute/smartcommute/core/advisor/logging"
	"github.com/smartcommute/smartcommute/core/monitoring"
	"github.com/smartcommute/smartcommute/core/notify"
	"github.com/smartcommute/smartcommute/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// PahoNotifier publishes advice records to a single MQTT topic using
// Eclipse Paho. Records are published retained when configured so late
// subscribers still see the latest recommendation.
type PahoNotifier struct {
	cli    pahoClient
	topic  string
	qos    byte
	retain bool
	logger logger.Logger
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoNotifier connects to the MQTT broker described by cfg.
func NewPahoNotifier(cfg Config) (*PahoNotifier, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_notifier")
	opts.OnConnect = func(_ paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PahoNotifier{
		cli:    c,
		topic:  cfg.Topic,
		qos:    cfg.QoS,
		retain: cfg.Retain,
		logger: log,
	}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
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
	return opts, nil
}

// PublishAdvice marshals the record to JSON and publishes it.
func (p *PahoNotifier) PublishAdvice(ctx context.Context, rec logging.AdviceRecord) error {
	if !p.cli.IsConnected() {
		return notify.ErrNotConnected
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	token := p.cli.Publish(p.topic, p.qos, p.retain, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			p.logger.Errorf("publish advice %s: %v", rec.ID, err)
			monitoring.CaptureException(err, map[string]string{"component": "mqtt_notifier", "topic": p.topic})
			return err
		}
		p.logger.Debugf("published advice %s to %s", rec.ID, p.topic)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close gracefully disconnects from the broker.
func (p *PahoNotifier) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
