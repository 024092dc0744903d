package credentials

// Credentials represents the stored API keys in credentials.toml.
type Credentials struct {
	Version int                   `toml:"version"`
	Keys    map[string]Credential `toml:"keys"`
}

// Credential holds a single stored API key.
type Credential struct {
	APIKey string `toml:"api_key"`
}
