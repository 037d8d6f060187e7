package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/autopeer-io/ft/pkg/log"
	"github.com/autopeer-io/ft/pkg/mqtt"
	"github.com/autopeer-io/ft/pkg/mqtt/topic"
	"github.com/autopeer-io/ft/pkg/options"
)

// MQTTNotifier publishes JSON encoded status messages with QoS 1.
type MQTTNotifier struct {
	client mqtt.Client
	topics *topic.TopicBuilder
	host   string
}

var _ Notifier = (*MQTTNotifier)(nil)

// NewMQTTNotifier connects to the broker in opts and waits for the first
// connection, bounded by opts.ConnectTimeout.
func NewMQTTNotifier(ctx context.Context, opts *options.MqttOptions, host string) (*MQTTNotifier, error) {
	client, err := mqtt.NewClient(opts.ToClientConfig())
	if err != nil {
		return nil, err
	}

	if err := client.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start mqtt client: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.AwaitConnection(waitCtx); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", opts.Broker, err)
	}

	return newMQTTNotifier(client, topic.NewTopicBuilder(opts.TopicRoot), host), nil
}

func newMQTTNotifier(client mqtt.Client, topics *topic.TopicBuilder, host string) *MQTTNotifier {
	return &MQTTNotifier{client: client, topics: topics, host: host}
}

func (n *MQTTNotifier) PackageStatus(ctx context.Context, s Status) {
	s.Host = n.host
	n.publish(ctx, n.topics.InstallStatus(n.host), s)
}

func (n *MQTTNotifier) RunReport(ctx context.Context, r Report) {
	r.Host = n.host
	n.publish(ctx, n.topics.RunReport(n.host), r)
}

func (n *MQTTNotifier) Close(ctx context.Context) {
	n.client.Disconnect(ctx)
}

func (n *MQTTNotifier) publish(ctx context.Context, topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Error(err, "Failed to encode status message", "topic", topic)
		return
	}
	if err := n.client.Publish(ctx, topic, 1, false, payload); err != nil {
		log.Warn("Failed to publish status message", "topic", topic, "error", err)
	}
}
