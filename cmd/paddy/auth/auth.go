// Package authcmder provides the auth command for storing API credentials.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/paddyhq/paddy/pkg/cliui"
	"github.com/paddyhq/paddy/pkg/credentials"
)

const authLongDesc string = `Store API credentials for the gateway and agent providers.

Credentials are stored in credentials.toml in the .paddy/ directory.
The "gateway" key is the bearer token inbound clients must present to
/v1/chat/completions; provider keys (openai, anthropic) are handed to
agent runtimes that need them. Environment variables (PADDY_API_KEY,
OPENAI_API_KEY, ANTHROPIC_API_KEY) take precedence over stored values.

Supported keys: gateway, openai, anthropic

Examples:
  paddy auth gateway             Prompt for the gateway bearer token
  paddy auth openai              Prompt for an OpenAI API key
  paddy auth --list              List stored credentials
  paddy auth --remove gateway    Remove the stored gateway token
  echo $KEY | paddy auth gateway Pipe a key from stdin`

const authShortDesc string = "Store API credentials for the gateway and agent providers"

func NewAuthCmd() *cobra.Command {
	var listFlag bool
	var removeFlag string

	cmd := &cobra.Command{
		Use:   "auth [key]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			switch {
			case listFlag:
				return runList(configDir)
			case removeFlag != "":
				return runRemove(removeFlag, configDir)
			default:
				if len(args) == 0 {
					return fmt.Errorf("key argument required\n\nSupported keys: %s",
						strings.Join(credentials.SupportedKeys(), ", "))
				}
				return runAuth(args[0], configDir)
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return credentials.SupportedKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&listFlag, "list", false, "List stored credentials")
	cmd.Flags().StringVar(&removeFlag, "remove", "", "Remove stored credentials for a key")

	return cmd
}

func runAuth(name, configDir string) error {
	name = strings.ToLower(strings.TrimSpace(name))

	if !credentials.IsSupportedKey(name) {
		return fmt.Errorf("unsupported key: %q\n\nSupported keys: %s",
			name, strings.Join(credentials.SupportedKeys(), ", "))
	}

	apiKey, err := readAPIKey(name)
	if err != nil {
		return err
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key cannot be empty")
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetKey(name, apiKey); err != nil {
		return err
	}

	envVar := credentials.EnvVarForKey(name)
	fmt.Printf("\n  %s Stored %s credentials %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(name),
		cliui.DimStyle.Render("(overridden by "+envVar+" when set)"),
	)

	if name == credentials.KeyGateway {
		fmt.Printf("  %s Clients must now send 'Authorization: Bearer <token>' to the gateway.\n",
			cliui.DimStyle.Render(" "))
	}

	fmt.Println()
	return nil
}

func runList(configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	names, err := mgr.ListKeys()
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Printf("\n  %s No stored credentials.\n", cliui.DimStyle.Render("●"))
		fmt.Printf("  Use 'paddy auth <key>' to store credentials.\n")
		fmt.Printf("  Supported keys: %s\n\n", strings.Join(credentials.SupportedKeys(), ", "))
		return nil
	}

	fmt.Printf("\n  %s\n\n", cliui.HeaderStyle.Render("Stored credentials"))
	for _, name := range names {
		envVar := credentials.EnvVarForKey(name)
		if envVar != "" {
			fmt.Printf("  %s  %s  %s\n",
				cliui.SuccessMark,
				cliui.NameStyle.Render(name),
				cliui.DimStyle.Render("→ "+envVar),
			)
		} else {
			fmt.Printf("  %s  %s\n", cliui.SuccessMark, cliui.NameStyle.Render(name))
		}
	}
	fmt.Println()

	return nil
}

func runRemove(name, configDir string) error {
	name = strings.ToLower(strings.TrimSpace(name))

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveKey(name); err != nil {
		return err
	}

	fmt.Printf("\n  %s Removed %s credentials.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(name))

	return nil
}

// readAPIKey reads an API key from stdin. If stdin is a pipe, it reads the
// first line. Otherwise, it prompts interactively with hidden input.
func readAPIKey(name string) (string, error) {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("checking stdin: %w", err)
	}

	// Piped input
	if (fi.Mode() & os.ModeCharDevice) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return "", errors.New("no input received on stdin")
	}

	// Interactive terminal
	envVar := credentials.EnvVarForKey(name)
	fmt.Printf("Enter key for %s (%s): ", name, envVar)

	keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("reading key: %w", err)
	}

	return string(keyBytes), nil
}
