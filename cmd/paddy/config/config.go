// Package configcmder provides the config command for managing persistent
// paddy configuration stored in the .paddy/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent paddy configuration.

Configuration is stored as config.toml in the .paddy/ directory and provides
default values for command flags. CLI flags and PADDY_* environment variables
always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  server.listen, server.streaming,
  agent.runtime, agent.vault_path, agent.model,
  cors.origins,
  events.provider, events.brokers, events.topic,
  client.target

Use subcommands to get, set, or list configuration values:
  paddy config set <key> <value>    Set a configuration value
  paddy config get <key>            Get a configuration value
  paddy config list                 List all configuration values

Examples:
  paddy config set agent.vault_path ~/notes
  paddy config set server.streaming false
  paddy config get agent.model
  paddy config list`

const configShortDesc string = "Manage persistent paddy configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
