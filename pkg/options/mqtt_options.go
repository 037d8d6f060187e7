package options

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/pflag"

	"github.com/autopeer-io/ft/pkg/mqtt"
)

var _ IOptions = (*MqttOptions)(nil)

// MqttOptions configures the broker install status is published to.
type MqttOptions struct {
	Broker   string `json:"broker" mapstructure:"broker"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	ClientID string `json:"client-id" mapstructure:"client-id"`

	KeepAlive      time.Duration `json:"keep-alive" mapstructure:"keep-alive"`
	ConnectTimeout time.Duration `json:"connect-timeout" mapstructure:"connect-timeout"`

	// InsecureSkipVerify controls whether a client verifies the server's certificate chain and host name.
	// This should be used only for testing.
	InsecureSkipVerify bool `json:"insecure-skip-verify" mapstructure:"insecure-skip-verify"`

	// TopicRoot prefixes every published topic: {TopicRoot}/firmware/...
	TopicRoot string `json:"topic-root" mapstructure:"topic-root"`
}

// NewMqttOptions creates a new MqttOptions with default values. Publishing
// stays off until a broker is configured.
func NewMqttOptions() *MqttOptions {
	return &MqttOptions{
		KeepAlive:      60 * time.Second,
		ConnectTimeout: 5 * time.Second,
		TopicRoot:      "fleet/v1",
	}
}

// Enabled reports whether a broker was configured.
func (o *MqttOptions) Enabled() bool {
	return o != nil && o.Broker != ""
}

func (o *MqttOptions) Validate() []error {
	if !o.Enabled() {
		return nil
	}

	errs := []error{}
	if u, err := url.Parse(o.Broker); err != nil {
		errs = append(errs, fmt.Errorf("invalid mqtt broker url %q: %w", o.Broker, err))
	} else if u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("mqtt broker url %q needs a scheme and host", o.Broker))
	}
	if o.TopicRoot == "" {
		errs = append(errs, fmt.Errorf("mqtt topic root must not be empty"))
	}
	return errs
}

func (o *MqttOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Broker, flagName("broker", prefixes...), o.Broker, "The URL of the MQTT broker install status is published to.")
	fs.StringVar(&o.Username, flagName("username", prefixes...), o.Username, "The username for MQTT authentication.")
	fs.StringVar(&o.Password, flagName("password", prefixes...), o.Password, "The password for MQTT authentication.")
	fs.StringVar(&o.ClientID, flagName("client-id", prefixes...), o.ClientID, "Explicit Client ID (optional, derived from the host name).")
	fs.DurationVar(&o.KeepAlive, flagName("keep-alive", prefixes...), o.KeepAlive, "MQTT Keep Alive interval.")
	fs.DurationVar(&o.ConnectTimeout, flagName("connect-timeout", prefixes...), o.ConnectTimeout, "Timeout for establishing the MQTT connection.")
	fs.BoolVar(&o.InsecureSkipVerify, flagName("insecure-skip-verify", prefixes...), o.InsecureSkipVerify, "If true, skips the TLS certificate verification.")
	fs.StringVar(&o.TopicRoot, flagName("topic-root", prefixes...), o.TopicRoot, "Topic prefix for published status.")
}

func (o *MqttOptions) ToClientConfig() *mqtt.ClientConfig {
	return &mqtt.ClientConfig{
		BrokerURL:          o.Broker,
		Username:           o.Username,
		Password:           o.Password,
		ClientID:           o.ClientID,
		KeepAlive:          uint16(o.KeepAlive.Seconds()),
		ConnectTimeout:     o.ConnectTimeout,
		InsecureSkipVerify: o.InsecureSkipVerify,
	}
}
