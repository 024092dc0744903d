package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --target
// on both "paddy chat" and future client commands).
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "server.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of registry keys to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen       = "listen"
	FlagStreaming    = "streaming"
	FlagRuntime      = "runtime"
	FlagVaultPath    = "vault-path"
	FlagModel        = "model"
	FlagEventsProv   = "events-provider"
	FlagEventsTopic  = "events-topic"
	FlagClientTarget = "target"
)

// DefaultFlagSet returns the registry of flags shared across paddy commands.
func DefaultFlagSet() FlagSet {
	return FlagSet{
		FlagListen: {
			Name:        "listen",
			Shorthand:   "l",
			ViperKey:    "server.listen",
			Description: "Address for the gateway to listen on",
		},
		FlagStreaming: {
			Name:        "streaming",
			ViperKey:    "server.streaming",
			Description: "Serve stream=true requests as SSE instead of rejecting them",
		},
		FlagRuntime: {
			Name:        "runtime",
			ViperKey:    "agent.runtime",
			Description: "Agent runtime backend (echo)",
		},
		FlagVaultPath: {
			Name:        "vault-path",
			Shorthand:   "v",
			ViperKey:    "agent.vault_path",
			Description: "Path to the vault the agent operates on",
		},
		FlagModel: {
			Name:        "model",
			Shorthand:   "m",
			ViperKey:    "agent.model",
			Description: "Model name advertised in completion responses",
		},
		FlagEventsProv: {
			Name:        "events-provider",
			ViperKey:    "events.provider",
			Description: "Exchange telemetry backend (nop, kafka)",
		},
		FlagEventsTopic: {
			Name:        "events-topic",
			ViperKey:    "events.topic",
			Description: "Topic exchange telemetry events are published to",
		},
		FlagClientTarget: {
			Name:        "target",
			Shorthand:   "t",
			ViperKey:    "client.target",
			Description: "Gateway URL for client commands",
		},
	}
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
