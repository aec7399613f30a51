package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"envnode-go/bus"
)

const (
	serviceName  = "config"
	configPrefix = "config"
)

type ctxKey string

// CtxDeviceKey is the context key holding the device ID used to pick an
// embedded configuration.
const CtxDeviceKey ctxKey = "device"

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Topic returns the retained topic a config section is published on.
func Topic(section string) bus.Topic { return bus.T(configPrefix, section) }

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
	// Path, when set, is read instead of the embedded per-device config.
	Path string
}

func NewConfigService(path string) *ConfigService {
	return &ConfigService{Name: serviceName, Path: path}
}

// load returns the raw JSON document for this node.
func (s *ConfigService) load(ctx context.Context) ([]byte, error) {
	if s.Path != "" {
		return os.ReadFile(s.Path)
	}
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return nil, errors.New("config: missing device ID in context")
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return nil, errors.New("config: no embedded config for device: " + device)
	}
	return raw, nil
}

// Publish reads the node config and publishes each top-level key as a
// retained message on config/<key>.
func (s *ConfigService) Publish(ctx context.Context, conn *bus.Connection) error {
	raw, err := s.load(ctx)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return errors.New("config: not a JSON object: " + err.Error())
	}
	for k, v := range m {
		conn.Publish(&bus.Message{
			Topic:    Topic(k),
			Payload:  v,
			Retained: true,
		})
	}
	return nil
}

// Start launches the config publisher in a goroutine. The result is sent on
// the returned channel.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- s.Publish(ctx, conn)
	}()
	return done
}

// Decode converts a bus payload (decoded JSON, raw bytes or string) into dst.
func Decode[T any](src any, dst *T) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}
