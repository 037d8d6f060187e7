package options

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

var _ IOptions = (*S3Options)(nil)

// S3Options configures an S3 compatible firmware repository.
type S3Options struct {
	Endpoint        string `json:"endpoint" mapstructure:"endpoint"`
	AccessKeyID     string `json:"access-key-id" mapstructure:"access-key-id"`
	SecretAccessKey string `json:"secret-access-key" mapstructure:"secret-access-key"`
	UseSSL          bool   `json:"use-ssl" mapstructure:"use-ssl"`
	BucketName      string `json:"bucket-name" mapstructure:"bucket-name"`
	Region          string `json:"region" mapstructure:"region"`
	// Prefix limits the manifest walk to keys below it.
	Prefix string `json:"prefix" mapstructure:"prefix"`
	// Concurrency bounds parallel manifest downloads.
	Concurrency int `json:"concurrency" mapstructure:"concurrency"`
	// InsecureSkipVerify disables TLS verification, for lab endpoints with
	// self-signed certificates only.
	InsecureSkipVerify bool `json:"insecure-skip-verify" mapstructure:"insecure-skip-verify"`
}

func NewS3Options() *S3Options {
	return &S3Options{
		UseSSL:      true,
		BucketName:  "firmware",
		Region:      "us-east-1",
		Concurrency: 8,
	}
}

// Enabled reports whether an endpoint was configured.
func (o *S3Options) Enabled() bool {
	return o != nil && o.Endpoint != ""
}

func (o *S3Options) Validate() []error {
	if !o.Enabled() {
		return nil
	}

	errs := []error{}
	if strings.Contains(o.Endpoint, "://") {
		errs = append(errs, fmt.Errorf("s3 endpoint %q must be host[:port] without a scheme", o.Endpoint))
	}
	if o.BucketName == "" {
		errs = append(errs, fmt.Errorf("s3 bucket name is required"))
	}
	if o.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("s3 concurrency must be at least 1, got %d", o.Concurrency))
	}
	return errs
}

func (o *S3Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Endpoint, flagName("endpoint", prefixes...), o.Endpoint, "S3 service endpoint (e.g. s3.amazonaws.com or minio.local:9000)")
	fs.StringVar(&o.AccessKeyID, flagName("access-key-id", prefixes...), o.AccessKeyID, "S3 access key ID")
	fs.StringVar(&o.SecretAccessKey, flagName("secret-access-key", prefixes...), o.SecretAccessKey, "S3 secret access key")
	fs.BoolVar(&o.UseSSL, flagName("use-ssl", prefixes...), o.UseSSL, "Enable SSL for S3 connection")
	fs.StringVar(&o.BucketName, flagName("bucket-name", prefixes...), o.BucketName, "S3 bucket holding firmware packages")
	fs.StringVar(&o.Region, flagName("region", prefixes...), o.Region, "S3 region")
	fs.StringVar(&o.Prefix, flagName("prefix", prefixes...), o.Prefix, "Only read package manifests below this key prefix")
	fs.IntVar(&o.Concurrency, flagName("concurrency", prefixes...), o.Concurrency, "Parallel manifest downloads")
}
