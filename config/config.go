package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SinkConfig carries the provisioning settings applied to every sink topic a
// plan writes to.
type SinkConfig struct {
	Partitions        int `yaml:"partitions"`
	ReplicationFactor int `yaml:"replicationFactor"`
}

type Config struct {
	Sink SinkConfig `yaml:"sink"`
}

func DefaultConfig() *Config {
	return &Config{
		Sink: SinkConfig{
			Partitions:        4,
			ReplicationFactor: 1,
		},
	}
}

func ReadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	config := DefaultConfig()
	if err := yaml.NewDecoder(f).Decode(config); err != nil {
		return nil, errors.Wrap(err, "couldn't decode yaml configuration")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Sink.Partitions < 1 {
		return errors.Errorf("sink partitions must be at least 1, got %d", c.Sink.Partitions)
	}
	if c.Sink.ReplicationFactor < 1 {
		return errors.Errorf("sink replication factor must be at least 1, got %d", c.Sink.ReplicationFactor)
	}
	return nil
}
