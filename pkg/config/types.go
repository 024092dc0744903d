package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent paddy configuration stored as config.toml
// in the .paddy/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Server  ServerConfig `toml:"server"`
	Agent   AgentConfig  `toml:"agent"`
	CORS    CORSConfig   `toml:"cors"`
	Events  EventsConfig `toml:"events"`
	Client  ClientConfig `toml:"client"`
}

// ServerConfig holds gateway server settings.
type ServerConfig struct {
	Listen    string `toml:"listen,omitempty"`
	Streaming bool   `toml:"streaming"`
}

// AgentConfig holds agent runtime settings.
type AgentConfig struct {
	Runtime   string `toml:"runtime,omitempty"`
	VaultPath string `toml:"vault_path,omitempty"`
	Model     string `toml:"model,omitempty"`
}

// CORSConfig holds cross-origin settings for browser-embedded clients
// such as the Obsidian plugin.
type CORSConfig struct {
	Origins []string `toml:"origins,omitempty"`
}

// EventsConfig holds exchange telemetry settings.
type EventsConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to the running
// gateway (e.g. paddy chat). Target is a full URL (scheme + host + port).
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
// List-valued keys use comma-separated strings on the get/set surface.
var configKeys = map[string]configKeyInfo{
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"server.streaming": {
		get: func(c *Config) string { return strconv.FormatBool(c.Server.Streaming) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for server.streaming: %w", err)
			}
			c.Server.Streaming = b
			return nil
		},
	},
	"agent.runtime": {
		get: func(c *Config) string { return c.Agent.Runtime },
		set: func(c *Config, v string) error { c.Agent.Runtime = v; return nil },
	},
	"agent.vault_path": {
		get: func(c *Config) string { return c.Agent.VaultPath },
		set: func(c *Config, v string) error { c.Agent.VaultPath = v; return nil },
	},
	"agent.model": {
		get: func(c *Config) string { return c.Agent.Model },
		set: func(c *Config, v string) error { c.Agent.Model = v; return nil },
	},
	"cors.origins": {
		get: func(c *Config) string { return strings.Join(c.CORS.Origins, ",") },
		set: func(c *Config, v string) error { c.CORS.Origins = splitList(v); return nil },
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error { c.Events.Brokers = splitList(v); return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"client.target": {
		get: func(c *Config) string { return c.Client.Target },
		set: func(c *Config, v string) error { c.Client.Target = v; return nil },
	},
}

// splitList parses a comma-separated value into a trimmed string slice.
func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
