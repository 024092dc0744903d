// Package gateway provides the OpenAI-compatible HTTP server that fronts
// the agent runtime.
package gateway

// Config is the gateway server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// Model is the runtime's model name, reported in telemetry. Completion
	// responses echo the request's model value; it is accepted but never
	// used for routing, since there is only one runtime behind the gateway.
	Model string

	// APIKey is the bearer token clients must present. When empty,
	// authentication is disabled.
	APIKey string

	// StreamingEnabled controls whether stream=true requests are served as
	// SSE. When false they are rejected with a remediation message.
	StreamingEnabled bool

	// VaultPath is handed to the runtime as its working dependency.
	VaultPath string

	// CORSOrigins lists the allowed cross-origin values for browser-embedded
	// clients.
	CORSOrigins []string
}
