package options

import (
	"github.com/spf13/pflag"
)

// IOptions is implemented by every option group. Validate returns all
// problems found so callers can aggregate them.
type IOptions interface {
	Validate() []error
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}

// flagName joins optional prefixes with name, e.g. ("broker", "mqtt") -> "mqtt.broker".
func flagName(name string, prefixes ...string) string {
	if len(prefixes) == 0 || prefixes[0] == "" {
		return name
	}
	return prefixes[0] + "." + name
}
