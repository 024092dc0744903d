// Package paddycmder
package paddycmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/paddyhq/paddy/cmd/paddy/auth"
	chatcmder "github.com/paddyhq/paddy/cmd/paddy/chat"
	configcmder "github.com/paddyhq/paddy/cmd/paddy/config"
	servecmder "github.com/paddyhq/paddy/cmd/paddy/serve"
	versioncmder "github.com/paddyhq/paddy/cmd/version"
)

const paddyLongDesc string = `Paddy is an OpenAI-compatible gateway for your vault agent.

Run the gateway using:
  paddy serve          Run the chat-completions gateway

Any OpenAI chat client (Obsidian Copilot, the openai SDKs, curl) can then
point at the gateway's /v1/chat/completions endpoint.`

const paddyShortDesc string = "Paddy - Vault Agent Gateway"

func NewPaddyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paddy",
		Short: paddyShortDesc,
		Long:  paddyLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml and credentials.toml (default: ./.paddy or ~/.paddy)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
