package config

import (
	"io"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Archive  ArchiveConfig `mapstructure:"archive"`
}

type ArchiveConfig struct {
	// LegacyNumbers switches serialization to the text numeric form for
	// compatibility with archives written by text-era encoders.
	LegacyNumbers bool `mapstructure:"legacy_numbers"`

	// MaxDeserializeValues bounds how many values the get command will
	// decode from a single archive. Zero means no bound.
	MaxDeserializeValues int `mapstructure:"max_deserialize_values"`
}

func ReadConfig(r io.Reader) (*Config, error) {
	decoder := toml.NewDecoder(r)
	decoder.SetTagName("mapstructure")
	config := &Config{}
	if err := decoder.Decode(config); err != nil {
		return nil, errors.Wrap(err, "error decoding config file")
	}
	return config, nil
}
