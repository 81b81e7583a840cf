package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so profile values can be written in the
// human-readable form time.ParseDuration accepts ("90s", "2m30s").
// yaml.v3 has no native support for duration strings.
type Duration time.Duration

// AsDuration returns the wrapped time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// HostProfile holds host-specific settings for fetching pages from a single
// host. This allows customizing render behavior per site without flags.
type HostProfile struct {
	// Cookie is an HTTP cookie to send when fetching this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// WaitUntil controls when a rendered fetch is considered settled.
	// Typical values: "load", "domcontentloaded", "networkidle".
	WaitUntil string `yaml:"waitUntil,omitempty"`

	// RenderTimeout overrides the global timeout for this host.
	// If zero, the global Timeout is used.
	RenderTimeout Duration `yaml:"renderTimeout,omitempty"`

	// Depth overrides the global traversal depth for this host.
	// If zero, the global MaxDepth is used.
	Depth int `yaml:"depth,omitempty"`
}

// File represents the structure of the .spindle configuration file.
type File struct {
	// Endpoint is the remote render gateway base URL.
	// CLI flags take precedence over this value.
	Endpoint string `yaml:"endpoint,omitempty"`

	// APIKey authenticates requests to the gateway.
	APIKey string `yaml:"apiKey,omitempty"`

	// Backend selects the fetch implementation ("gateway", "direct",
	// "browser"). Empty means auto-select.
	Backend string `yaml:"backend,omitempty"`

	// Hosts maps host names to their specific profiles.
	// Keys should be the bare host (e.g., "example.com").
	Hosts map[string]HostProfile `yaml:"hosts,omitempty"`

	// Defaults contains the profile applied to all hosts unless
	// overridden in the host-specific profile.
	Defaults HostProfile `yaml:"defaults,omitempty"`
}

// GetHostProfile returns the profile for a specific host.
// It merges the host-specific profile with defaults.
func (cf *File) GetHostProfile(host string) HostProfile {
	// Start with defaults
	result := cf.Defaults

	// Override with host-specific profile if present
	if profile, ok := cf.Hosts[host]; ok {
		if profile.Cookie != "" {
			result.Cookie = profile.Cookie
		}
		if profile.WaitUntil != "" {
			result.WaitUntil = profile.WaitUntil
		}
		if profile.RenderTimeout != 0 {
			result.RenderTimeout = profile.RenderTimeout
		}
		if profile.Depth != 0 {
			result.Depth = profile.Depth
		}
		if len(profile.Headers) > 0 {
			// Merge into a fresh map; result.Headers still aliases the
			// defaults map at this point and must not be mutated.
			merged := make(map[string]string, len(result.Headers)+len(profile.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range profile.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
	}

	return result
}
