//go:build !tinygo

package config

import (
	"os"

	"ppsdo-go/errcode"
	"ppsdo-go/types"

	"gopkg.in/yaml.v3"
)

// Parse overlays a YAML document on the profile it names ("profile:" key,
// DefaultProfile when absent). Fields the document omits keep the profile
// values.
func Parse(data []byte) (types.BoardConfig, error) {
	var head struct {
		Profile string `yaml:"profile"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return types.BoardConfig{}, errcode.Wrap(errcode.InvalidParams, "config.parse", err)
	}
	if head.Profile == "" {
		head.Profile = DefaultProfile
	}
	c, err := Lookup(head.Profile)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return types.BoardConfig{}, errcode.Wrap(errcode.InvalidParams, "config.parse", err)
	}
	return c, nil
}

// LoadFile reads and parses a board YAML file. An empty path yields the
// default profile.
func LoadFile(path string) (types.BoardConfig, error) {
	if path == "" {
		return Lookup(DefaultProfile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.BoardConfig{}, errcode.Wrap(errcode.InvalidParams, "config.load", err)
	}
	return Parse(data)
}
