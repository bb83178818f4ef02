package config

import (
	"fmt"
	"os"
	"time"

	"github.com/contentsquare/cyclecounter/internal/counter"
	"github.com/mohae/deepcopy"
	"gopkg.in/yaml.v2"
)

const (
	DefaultIncrements = 1 << 24
	DefaultNamespace  = "cyclecounter"
)

var (
	defaultConfig = Config{
		Metrics: defaultMetrics,
	}

	defaultMetrics = Metrics{
		Namespace: DefaultNamespace,
	}

	defaultRun = Run{
		Workers:    1,
		Increments: DefaultIncrements,
	}
)

// Config describes the load runs to execute against counters and how to
// expose their results.
type Config struct {
	// Whether to print debug logs
	LogDebug bool `yaml:"log_debug,omitempty"`

	Metrics Metrics `yaml:"metrics,omitempty"`

	// Runs are executed sequentially in the given order
	Runs []Run `yaml:"runs"`

	// Catches all undefined fields
	XXX map[string]interface{} `yaml:",inline"`
}

// String returns the effective config as yaml.
func (c *Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		panic(fmt.Sprintf("BUG: cannot marshal config: %s", err))
	}
	return string(b)
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	// set c to the defaults and then overwrite it with the input.
	*c = deepcopy.Copy(defaultConfig).(Config)

	type plain Config
	if err := unmarshal((*plain)(c)); err != nil {
		return err
	}

	if len(c.Runs) == 0 {
		return fmt.Errorf("field `runs` must contain at least 1 run")
	}

	names := make(map[string]struct{}, len(c.Runs))
	for _, r := range c.Runs {
		if _, ok := names[r.Name]; ok {
			return fmt.Errorf("duplicate run name %q", r.Name)
		}
		names[r.Name] = struct{}{}
	}

	return checkOverflow(c.XXX, "config")
}

// Metrics describes the prometheus endpoint
type Metrics struct {
	// TCP address to serve /metrics on.
	// If empty, runs are executed once and the process exits.
	ListenAddr string `yaml:"listen_addr,omitempty"`

	// Namespace for all exported metrics
	Namespace string `yaml:"namespace,omitempty"`

	// List of networks that access to /metrics is allowed from
	// Each list item could be IP address or subnet mask
	// if omitted or zero - no limits would be applied
	AllowedNetworks Networks `yaml:"allowed_networks,omitempty"`

	// Catches all undefined fields
	XXX map[string]interface{} `yaml:",inline"`
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (m *Metrics) UnmarshalYAML(unmarshal func(interface{}) error) error {
	*m = deepcopy.Copy(defaultMetrics).(Metrics)

	type plain Metrics
	if err := unmarshal((*plain)(m)); err != nil {
		return err
	}

	if len(m.AllowedNetworks) > 0 && len(m.ListenAddr) == 0 {
		return fmt.Errorf("field `allowed_networks` requires `listen_addr` to be set")
	}

	return checkOverflow(m.XXX, "metrics")
}

// Run describes a single load run: a fresh counter of the given strategy
// incremented by a number of concurrent workers
type Run struct {
	// Run name, used in logs and metric labels
	Name string `yaml:"name"`

	// Counter implementation: `unsynchronized`, `locked`, `cas` or `eager`
	Strategy counter.Strategy `yaml:"strategy"`

	// Number of concurrent workers
	// default value is 1
	Workers int `yaml:"workers,omitempty"`

	// Total number of increments split evenly between workers
	// default value is 16777216
	Increments int64 `yaml:"increments,omitempty"`

	// Counter maximum value
	// if omitted or zero - the counter default (math.MaxInt32) is kept
	MaximumValue int32 `yaml:"maximum_value,omitempty"`

	// Maximum number of increments per second across all workers
	// if omitted or zero - no limits would be applied
	RateLimit float64 `yaml:"rate_limit,omitempty"`

	// Maximum duration of the run
	// if omitted or zero - no limits would be applied
	Timeout Duration `yaml:"timeout,omitempty"`

	// Catches all undefined fields
	XXX map[string]interface{} `yaml:",inline"`
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (r *Run) UnmarshalYAML(unmarshal func(interface{}) error) error {
	*r = deepcopy.Copy(defaultRun).(Run)

	type plain Run
	if err := unmarshal((*plain)(r)); err != nil {
		return err
	}

	if len(r.Name) == 0 {
		return fmt.Errorf("field `name` must be set for every run")
	}

	if !r.Strategy.Valid() {
		return fmt.Errorf("field `strategy` in run %q must be one of %s. Got %q instead",
			r.Name, strategiesList(), r.Strategy)
	}

	if r.Workers < 1 {
		return fmt.Errorf("field `workers` in run %q must be positive. Got %d instead", r.Name, r.Workers)
	}

	if !r.Strategy.Concurrent() && r.Workers > 1 {
		return fmt.Errorf("strategy %q in run %q is not safe for concurrent use; `workers` must be 1. Got %d instead",
			r.Strategy, r.Name, r.Workers)
	}

	if r.Increments < 0 {
		return fmt.Errorf("field `increments` in run %q can't be negative. Got %d instead", r.Name, r.Increments)
	}

	if r.MaximumValue < 0 {
		return fmt.Errorf("field `maximum_value` in run %q can't be negative. Got %d instead", r.Name, r.MaximumValue)
	}

	if r.RateLimit < 0 {
		return fmt.Errorf("field `rate_limit` in run %q can't be negative. Got %v instead", r.Name, r.RateLimit)
	}

	if r.Timeout < 0 {
		return fmt.Errorf("field `timeout` in run %q can't be negative. Got %s instead", r.Name, r.Timeout)
	}

	return checkOverflow(r.XXX, fmt.Sprintf("run %q", r.Name))
}

// Duration wraps time.Duration to be written in yaml as "30s", "1m" etc.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("wrong duration format %q: %s", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// LoadFile loads and validates configuration from provided .yml file
func LoadFile(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
