// Package chatcmder provides the chat command for talking to the vault
// agent through a running paddy gateway.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paddyhq/paddy/pkg/cliui"
	"github.com/paddyhq/paddy/pkg/config"
	"github.com/paddyhq/paddy/pkg/credentials"
	"github.com/paddyhq/paddy/pkg/logger"
	"github.com/paddyhq/paddy/pkg/sse"
	"github.com/paddyhq/paddy/pkg/wire"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("agent> ")
)

type chatCommander struct {
	target string
	model  string
	apiKey string
	debug  bool

	logger *zap.Logger
}

const chatLongDesc string = `Chat with the vault agent through a running paddy gateway.

With no arguments, starts an interactive session: each turn is sent as a
streaming chat-completions request and tokens are printed as they arrive.
The full transcript is resent with every turn, since the gateway holds no
conversation state.

With a prompt argument, sends a single non-streaming request and renders
the agent's answer as markdown.

Examples:
  paddy chat
  paddy chat --target http://localhost:9000
  paddy chat "summarize my notes from this week"`

const chatShortDesc string = "Chat with the vault agent through the gateway"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}
	flagSet := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("target") {
				cmder.target = cfg.Client.Target
			}

			if !cmd.Flags().Changed("model") {
				cmder.model = cfg.Agent.Model
			}

			// The gateway may require a bearer token.
			credMgr, err := credentials.NewManager(configDir)
			if err != nil {
				return fmt.Errorf("loading credentials: %w", err)
			}
			cmder.apiKey, err = credMgr.ResolveKey(credentials.KeyGateway)
			if err != nil {
				return fmt.Errorf("resolving gateway key: %w", err)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			if len(args) == 1 {
				return cmder.runOneShot(args[0])
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, flagSet, config.FlagClientTarget, &cmder.target)
	config.AddStringFlag(cmd, flagSet, config.FlagModel, &cmder.model)

	return cmd
}

func (c *chatCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	var messages []wire.ChatMessage

	fmt.Println()
	fmt.Printf("  %s %s\n",
		cliui.KeyStyle.Render("Gateway:"),
		cliui.NameStyle.Render(c.target),
	)
	fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		// Append user message
		messages = append(messages, wire.ChatMessage{
			Role:    wire.RoleUser,
			Content: wire.NewTextContent(input),
		})

		// Send to the gateway and stream the response
		assistantContent, err := c.sendAndStream(messages)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			// Remove the failed user message so we can retry
			messages = messages[:len(messages)-1]
			continue
		}

		// Append assistant response to the transcript
		messages = append(messages, wire.ChatMessage{
			Role:    wire.RoleAssistant,
			Content: wire.NewTextContent(assistantContent),
		})

		fmt.Println()
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// runOneShot sends a single non-streaming request and renders the answer
// as markdown.
func (c *chatCommander) runOneShot(prompt string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	messages := []wire.ChatMessage{
		{Role: wire.RoleUser, Content: wire.NewTextContent(prompt)},
	}

	var response wire.CompletionResponse
	err := cliui.Step(os.Stderr, "Waiting for the agent", func() error {
		resp, err := c.send(messages, false)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		return json.NewDecoder(resp.Body).Decode(&response)
	})
	if err != nil {
		return err
	}

	if len(response.Choices) == 0 {
		return fmt.Errorf("gateway returned no choices")
	}

	rendered, err := cliui.RenderMarkdown(response.Choices[0].Message.Content)
	if err != nil {
		// Fall back to raw text when the terminal rejects rendering.
		fmt.Println(response.Choices[0].Message.Content)
		return nil
	}

	fmt.Print(rendered)
	return nil
}

// send posts a chat-completions request to the gateway and returns the
// response after checking the status code.
func (c *chatCommander) send(messages []wire.ChatMessage, stream bool) (*http.Response, error) {
	reqBody := wire.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   stream,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending chat request",
		zap.String("target", c.target),
		zap.String("model", c.model),
		zap.Bool("stream", stream),
		zap.Int("message_count", len(messages)),
	)

	url := c.target + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	client := &http.Client{
		// Agent runs can be slow
		Timeout: 5 * time.Minute,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request to gateway: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		var errResp wire.ErrorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && errResp.Error != "" {
			return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, errResp.Detail)
		}
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return resp, nil
}

// sendAndStream sends a streaming chat request and prints tokens to stdout
// as they arrive. Returns the full assistant response text.
func (c *chatCommander) sendAndStream(messages []wire.ChatMessage) (string, error) {
	resp, err := c.send(messages, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	fmt.Print(assistantPrompt)

	var fullContent strings.Builder
	reader := sse.NewReader(resp.Body)

	for {
		event, err := reader.Next()
		if err != nil {
			return fullContent.String(), fmt.Errorf("reading stream: %w", err)
		}
		if event == nil {
			// Source exhausted without a [DONE] sentinel.
			break
		}

		if event.Done() {
			break
		}

		var chunk wire.StreamChunk
		if err := json.Unmarshal([]byte(event.Data), &chunk); err != nil {
			c.logger.Debug("failed to parse stream chunk",
				zap.Error(err),
				zap.String("data", event.Data),
			)
			continue
		}

		if len(chunk.Choices) == 0 {
			continue
		}

		// Print the content token to stdout
		if content := chunk.Choices[0].Delta.Content; content != nil && *content != "" {
			fmt.Print(*content)
			fullContent.WriteString(*content)
		}

		if chunk.Choices[0].FinishReason != nil {
			break
		}
	}

	return fullContent.String(), nil
}
