// Package options holds the ft options that are not part of the mode
// selection, such as the log output settings.
package options

import (
	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/autopeer-io/ft/pkg/log"
)

type FtOptions struct {
	Log *log.Options `json:"log" mapstructure:"log"`
}

func NewFtOptions() *FtOptions {
	return &FtOptions{
		Log: log.NewOptions(),
	}
}

// AddFlags registers every option group through add, once per section.
func (o *FtOptions) AddFlags(add func(section string, fn func(fs *pflag.FlagSet))) {
	add("Log", o.Log.AddFlags)
}

func (o *FtOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.Log.Validate()...)

	return utilerrors.NewAggregate(errs)
}
