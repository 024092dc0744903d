// Package servecmder provides the serve command for running the gateway.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/paddyhq/paddy/gateway"
	"github.com/paddyhq/paddy/pkg/agent"
	"github.com/paddyhq/paddy/pkg/agent/echo"
	"github.com/paddyhq/paddy/pkg/config"
	"github.com/paddyhq/paddy/pkg/credentials"
	"github.com/paddyhq/paddy/pkg/eventstream"
	kafkastream "github.com/paddyhq/paddy/pkg/eventstream/kafka"
	nopstream "github.com/paddyhq/paddy/pkg/eventstream/nop"
	"github.com/paddyhq/paddy/pkg/logger"
)

type ServeCommander struct {
	listen         string
	streaming      bool
	runtime        string
	vaultPath      string
	model          string
	eventsProvider string
	eventsTopic    string
	debug          bool

	viper  *viper.Viper
	logger *zap.Logger
}

const serveLongDesc string = `Run the Paddy gateway.

The gateway serves the OpenAI chat-completions protocol on /v1/chat/completions
and dispatches every request to the configured agent runtime. Clients carry
the full conversation transcript in each request; the gateway holds no
conversation state between exchanges.

Flags override environment variables (PADDY_SERVER_LISTEN, PADDY_AGENT_MODEL,
etc.), which override config.toml values, which override defaults.

Examples:
  paddy serve
  paddy serve --listen :9000 --vault-path ~/notes
  paddy serve --events-provider kafka`

const serveShortDesc string = "Run the Paddy gateway"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}
	flagSet := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, flagSet, []string{
				config.FlagListen,
				config.FlagStreaming,
				config.FlagRuntime,
				config.FlagVaultPath,
				config.FlagModel,
				config.FlagEventsProv,
				config.FlagEventsTopic,
			})

			// Re-read every value through viper so the flag > env > file >
			// default precedence applies uniformly.
			cmder.listen = v.GetString("server.listen")
			cmder.streaming = v.GetBool("server.streaming")
			cmder.runtime = v.GetString("agent.runtime")
			cmder.vaultPath = v.GetString("agent.vault_path")
			cmder.model = v.GetString("agent.model")
			cmder.eventsProvider = v.GetString("events.provider")
			cmder.eventsTopic = v.GetString("events.topic")
			cmder.viper = v

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(configDir)
		},
	}

	config.AddStringFlag(cmd, flagSet, config.FlagListen, &cmder.listen)
	config.AddBoolFlag(cmd, flagSet, config.FlagStreaming, &cmder.streaming)
	config.AddStringFlag(cmd, flagSet, config.FlagRuntime, &cmder.runtime)
	config.AddStringFlag(cmd, flagSet, config.FlagVaultPath, &cmder.vaultPath)
	config.AddStringFlag(cmd, flagSet, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, flagSet, config.FlagEventsProv, &cmder.eventsProvider)
	config.AddStringFlag(cmd, flagSet, config.FlagEventsTopic, &cmder.eventsTopic)

	return cmd
}

func (c *ServeCommander) run(configDir string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	// Bearer token for inbound clients. Empty means open access.
	credMgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	apiKey, err := credMgr.ResolveKey(credentials.KeyGateway)
	if err != nil {
		return fmt.Errorf("resolving gateway key: %w", err)
	}
	if apiKey == "" {
		c.logger.Warn("no gateway API key configured, serving without authentication")
	}

	runtime, err := c.createRuntime()
	if err != nil {
		return err
	}

	publisher, err := c.createPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	gwConfig := gateway.Config{
		ListenAddr:       c.listen,
		Model:            c.model,
		APIKey:           apiKey,
		StreamingEnabled: c.streaming,
		VaultPath:        c.vaultPath,
		CORSOrigins:      c.viper.GetStringSlice("cors.origins"),
	}

	gw, err := gateway.New(gwConfig, runtime, publisher, c.logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}
	defer gw.Close()

	c.logger.Info("starting gateway",
		zap.String("listen", c.listen),
		zap.String("runtime", c.runtime),
		zap.String("model", c.model),
		zap.Bool("streaming", c.streaming),
		zap.Bool("auth", apiKey != ""),
	)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := gw.Run(); err != nil {
			errChan <- fmt.Errorf("gateway error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return nil
	}
}

func (c *ServeCommander) createRuntime() (agent.Runtime, error) {
	switch c.runtime {
	case "echo":
		return echo.New(), nil
	default:
		return nil, fmt.Errorf("unknown agent runtime: %q", c.runtime)
	}
}

func (c *ServeCommander) createPublisher() (eventstream.Publisher, error) {
	switch c.eventsProvider {
	case "", "nop":
		return nopstream.NewPublisher(), nil
	case "kafka":
		brokers := c.viper.GetStringSlice("events.brokers")
		if len(brokers) == 0 {
			return nil, fmt.Errorf("events.brokers must be set for the kafka provider")
		}
		return kafkastream.NewPublisher(brokers, c.eventsTopic, c.logger), nil
	default:
		return nil, fmt.Errorf("unknown events provider: %q", c.eventsProvider)
	}
}
