package options

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3OptionsValidate(t *testing.T) {
	o := NewS3Options()
	assert.Empty(t, o.Validate(), "disabled options are always valid")

	o.Endpoint = "https://minio.local:9000"
	o.BucketName = ""
	o.Concurrency = 0
	assert.Len(t, o.Validate(), 3)

	o.Endpoint = "minio.local:9000"
	o.BucketName = "firmware"
	o.Concurrency = 2
	assert.Empty(t, o.Validate())
}

func TestMqttOptionsValidate(t *testing.T) {
	o := NewMqttOptions()
	assert.False(t, o.Enabled())
	assert.Empty(t, o.Validate())

	o.Broker = "broker-without-scheme"
	assert.Len(t, o.Validate(), 1)

	o.Broker = "tcp://broker.fleet.local:1883"
	assert.Empty(t, o.Validate())

	cfg := o.ToClientConfig()
	assert.Equal(t, uint16(60), cfg.KeepAlive)
	assert.Equal(t, o.Broker, cfg.BrokerURL)
}

func TestAddFlagsPrefix(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o := NewMqttOptions()
	o.AddFlags(fs, "mqtt")

	require.NoError(t, fs.Parse([]string{"--mqtt.broker=tcp://b:1883", "--mqtt.topic-root=lab"}))
	assert.Equal(t, "tcp://b:1883", o.Broker)
	assert.Equal(t, "lab", o.TopicRoot)
	assert.NotNil(t, fs.Lookup("mqtt.keep-alive"))
}
