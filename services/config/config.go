package config

import (
	"context"

	"ppsdo-go/bus"
	"ppsdo-go/errcode"
	"ppsdo-go/types"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = types.TopicConfig
	CtxDeviceKey = "device" // context key used for the board profile name
)

// EmbeddedConfigLookup allows overriding how profiles are resolved.
var EmbeddedConfigLookup = func(device string) (types.BoardConfig, bool) {
	c, ok := embeddedConfigs[device]
	return c, ok
}

// Lookup returns the named board profile.
func Lookup(device string) (types.BoardConfig, error) {
	if device == "" {
		return types.BoardConfig{}, errcode.New(errcode.InvalidParams, "config.lookup", "missing device ID")
	}
	c, ok := EmbeddedConfigLookup(device)
	if !ok {
		return types.BoardConfig{}, errcode.New(errcode.InvalidParams, "config.lookup", "no embedded config for device: "+device)
	}
	return c, nil
}

// Publish places the whole document on config/board and each section on
// config/<section>, all retained.
func Publish(conn *bus.Connection, c types.BoardConfig) {
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "board"), c, true))
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "timebase"), c.Timebase, true))
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "output"), c.Output, true))
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "trim"), c.Trim, true))
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "discipline"), c.Discipline, true))
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "display"), c.Display, true))
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "heartbeat"), c.Heartbeat, true))
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// FromContext resolves the profile named in ctx under CtxDeviceKey.
func FromContext(ctx context.Context) (types.BoardConfig, error) {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	return Lookup(device)
}

func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	c, err := FromContext(ctx)
	if err != nil {
		return err
	}
	Publish(conn, c)
	return nil
}

// Start publishes the profile named in ctx from its own goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("[config]", err.Error())
		}
	}()
}
