// Package config loads ft configuration files.
//
// Files use INI syntax. Every file given is merged in order, later files
// overriding earlier ones key by key. Typed settings are served from a
// viper instance, which also picks up FT_* environment overrides such as
// FT_MAIN_STORAGE_TOPDIR. Dynamic sections, "device:<id>" and
// "plugin:<name>", are enumerated from the merged files directly so
// their names keep their case and any dots.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-ini/ini"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/autopeer-io/ft/internal/core"
	"github.com/autopeer-io/ft/pkg/log"
	"github.com/autopeer-io/ft/pkg/options"
)

const (
	// DefaultConfDir holds the default config file.
	DefaultConfDir = "/etc/firmware"
	// DefaultConfigName is the default config file name.
	DefaultConfigName = "firmware.conf"
	// DefaultStorageTopdir is the default firmware repository directory.
	DefaultStorageTopdir = "/var/lib/firmware"

	envPrefix = "FT"

	devicePrefix = "device:"
	pluginPrefix = "plugin:"
)

// DefaultConfigFile returns the config file used when none is given.
func DefaultConfigFile() string {
	return filepath.Join(DefaultConfDir, DefaultConfigName)
}

// File is one config file to load. Optional files may be missing.
type File struct {
	Path     string
	Optional bool
}

// Config is the merged configuration of a run.
type Config struct {
	v *viper.Viper

	// sections in order of first appearance, keys as written.
	order    []string
	sections map[string]map[string]string
	loaded   []string
}

// Load reads and merges files in order. A missing required file or a
// syntax error is a *core.ConfigError.
func Load(files []File) (*Config, error) {
	c := &Config{
		v:        viper.New(),
		sections: make(map[string]map[string]string),
	}
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_", ":", "_"))
	c.v.AutomaticEnv()
	c.v.SetDefault("main.storage_topdir", DefaultStorageTopdir)
	c.v.SetDefault("main.repository", "fs")

	for _, f := range files {
		path, err := homedir.Expand(f.Path)
		if err != nil {
			return nil, &core.ConfigError{Source: f.Path, Err: err}
		}

		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) && f.Optional {
			log.Debug("Optional config file not found", "path", path)
			continue
		}
		if err != nil {
			return nil, &core.ConfigError{Source: path, Err: fmt.Errorf("failed to read config file: %w", err)}
		}

		if err := c.merge(path, data); err != nil {
			return nil, err
		}
		c.loaded = append(c.loaded, path)
		log.Debug("Loaded config file", "path", path)
	}
	return c, nil
}

func (c *Config) merge(path string, data []byte) error {
	sections, order, err := ParseINI(data)
	if err != nil {
		return &core.ConfigError{Source: path, Err: err}
	}

	settings := make(map[string]any, len(sections))
	for _, name := range order {
		if _, ok := c.sections[name]; !ok {
			c.sections[name] = make(map[string]string)
			c.order = append(c.order, name)
		}
		m := make(map[string]any, len(sections[name]))
		for k, val := range sections[name] {
			c.sections[name][k] = val
			m[k] = val
		}
		settings[name] = m
	}

	if err := c.v.MergeConfigMap(settings); err != nil {
		return &core.ConfigError{Source: path, Err: fmt.Errorf("failed to merge config: %w", err)}
	}
	return nil
}

// ParseINI parses INI data into sections of key/value pairs, returning
// section names in file order. Keys outside any section are dropped.
func ParseINI(data []byte) (map[string]map[string]string, []string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		IgnoreInlineComment:        true,
	}, data)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid INI syntax: %w", err)
	}

	sections := make(map[string]map[string]string)
	var order []string
	for _, s := range f.Sections() {
		if s.Name() == ini.DefaultSection {
			continue
		}
		kv := make(map[string]string, len(s.Keys()))
		for _, k := range s.Keys() {
			kv[k.Name()] = k.String()
		}
		sections[s.Name()] = kv
		order = append(order, s.Name())
	}
	return sections, order, nil
}

// Files returns the paths that were actually loaded.
func (c *Config) Files() []string {
	return c.loaded
}

// Viper exposes the typed settings.
func (c *Config) Viper() *viper.Viper {
	return c.v
}

func (c *Config) StorageTopdir() string {
	dir, err := homedir.Expand(c.v.GetString("main.storage_topdir"))
	if err != nil {
		return c.v.GetString("main.storage_topdir")
	}
	return dir
}

// RepositoryKind is "fs" or "s3".
func (c *Config) RepositoryKind() string {
	return strings.ToLower(c.v.GetString("main.repository"))
}

func (c *Config) SystemID() string {
	return c.v.GetString("main.system_id")
}

func (c *Config) MetricsTextfile() string {
	return c.v.GetString("main.metrics_textfile")
}

// S3 returns the [s3] section over the defaults.
func (c *Config) S3() (*options.S3Options, error) {
	o := options.NewS3Options()
	if err := c.unmarshalOptions("s3", o); err != nil {
		return nil, err
	}
	return o, nil
}

// Mqtt returns the [mqtt] section over the defaults.
func (c *Config) Mqtt() (*options.MqttOptions, error) {
	o := options.NewMqttOptions()
	if err := c.unmarshalOptions("mqtt", o); err != nil {
		return nil, err
	}
	return o, nil
}

// unmarshalOptions decodes the keys of section into o key by key, so FT_*
// variables such as FT_S3_ENDPOINT apply to option groups too, with or
// without the section in a file.
func (c *Config) unmarshalOptions(section string, o options.IOptions) error {
	sub := viper.New()
	for _, key := range optionKeys(o) {
		if full := section + "." + key; c.v.IsSet(full) {
			sub.Set(key, c.v.Get(full))
		}
	}
	if err := sub.Unmarshal(o); err != nil {
		return core.NewConfigError("["+section+"]", "failed to decode: %v", err)
	}
	if errs := o.Validate(); len(errs) > 0 {
		return &core.ConfigError{Source: "[" + section + "]", Err: utilerrors.NewAggregate(errs)}
	}
	return nil
}

// optionKeys lists the mapstructure keys of an option struct.
func optionKeys(o any) []string {
	t := reflect.TypeOf(o)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var keys []string
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("mapstructure"), ",")
		if name != "" && name != "-" {
			keys = append(keys, name)
		}
	}
	return keys
}

// Section returns a copy of the keys of a section, or nil.
func (c *Config) Section(name string) map[string]string {
	s, ok := c.sections[name]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// PluginEnabled reads "enabled" of the [plugin:<name>] section. set is
// false when the plugin has no such key.
func (c *Config) PluginEnabled(name string) (enabled, set bool) {
	raw, ok := c.sections[pluginPrefix+name]["enabled"]
	if !ok {
		return false, false
	}
	return parseBool(raw), true
}

// DeviceSections returns the ids of [device:<id>] sections in file order.
func (c *Config) DeviceSections() []string {
	var ids []string
	for _, name := range c.order {
		if id, ok := strings.CutPrefix(name, devicePrefix); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// DeviceSection returns the keys of [device:<id>].
func (c *Config) DeviceSection(id string) map[string]string {
	return c.Section(devicePrefix + id)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "true", "on", "enabled":
		return true
	default:
		return false
	}
}
