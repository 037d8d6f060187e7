package topic

import (
	"fmt"
)

// Topic segments published by ft. They form the contract with whatever
// fleet service consumes the status stream.
const (
	// SuffixInstallStatus carries one message per package install step.
	// Structure: {root}/firmware/status/{hostID}
	SuffixInstallStatus = "firmware/status"

	// SuffixRunReport carries the outcome of a whole update run.
	// Structure: {root}/firmware/report/{hostID}
	SuffixRunReport = "firmware/report"
)

// TopicBuilder constructs MQTT topic strings below a root namespace.
type TopicBuilder struct {
	// root is the base namespace for all topics (e.g., "fleet/v1").
	root string
}

// NewTopicBuilder creates a new instance of TopicBuilder with the specified root namespace.
func NewTopicBuilder(root string) *TopicBuilder {
	return &TopicBuilder{root: root}
}

// InstallStatus returns the topic for per-package install status of a host.
func (b *TopicBuilder) InstallStatus(hostID string) string {
	return b.build(SuffixInstallStatus, hostID)
}

// RunReport returns the topic for the final report of a host's run.
func (b *TopicBuilder) RunReport(hostID string) string {
	return b.build(SuffixRunReport, hostID)
}

// build is a private helper to construct the final topic string.
// Pattern: {root}/{suffix}/{identifier}
func (b *TopicBuilder) build(suffix, id string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, suffix, id)
}
