// services/config/config.go
package config

import (
	"errors"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"hapticctl-go/bus"
)

const (
	serviceName  = "config"
	configPrefix = "config"
)

// ReadFile allows overriding how the config source is resolved (tests).
var ReadFile = os.ReadFile

// Service loads a TOML file and publishes each top-level section as a
// retained message on config/<section>. Services subscribe to their own
// section and pick it up whenever they start, in any order.
type Service struct {
	Path string
	Log  zerolog.Logger
}

func New(path string, log zerolog.Logger) *Service {
	return &Service{Path: path, Log: log.With().Str("service", serviceName).Logger()}
}

// Publish reads, decodes and publishes the config. Returns an error when the
// file is missing or not a TOML table of tables.
func (s *Service) Publish(conn *bus.Connection) error {
	raw, err := ReadFile(s.Path)
	if err != nil {
		return err
	}

	var sections map[string]any
	if err := toml.Unmarshal(raw, &sections); err != nil {
		return err
	}
	if len(sections) == 0 {
		return errors.New("config: no sections in " + s.Path)
	}

	for key, val := range sections {
		conn.Publish(&bus.Message{
			Topic:    bus.T(configPrefix, key),
			Payload:  val,
			Retained: true,
		})
		s.Log.Debug().Str("section", key).Msg("config section published")
	}
	return nil
}

// Start launches the publisher in a goroutine.
func (s *Service) Start(conn *bus.Connection) {
	go func() {
		if err := s.Publish(conn); err != nil {
			s.Log.Error().Err(err).Str("path", s.Path).Msg("config publish failed")
		}
	}()
}
