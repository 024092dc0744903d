package config

const (
	defaultListen    = ":8000"
	defaultStreaming = true

	defaultRuntime = "echo"
	defaultModel   = "paddy"

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "paddy.exchanges"

	defaultClientTarget = "http://localhost:8000"
)

// defaultCORSOrigins covers the Obsidian desktop plugin and the Capacitor
// mobile shell.
func defaultCORSOrigins() []string {
	return []string{"app://obsidian.md", "capacitor://localhost"}
}

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen:    defaultListen,
			Streaming: defaultStreaming,
		},
		Agent: AgentConfig{
			Runtime: defaultRuntime,
			Model:   defaultModel,
		},
		CORS: CORSConfig{
			Origins: defaultCORSOrigins(),
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		Client: ClientConfig{
			Target: defaultClientTarget,
		},
	}
}
