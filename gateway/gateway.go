package gateway

import (
	"fmt"
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/paddyhq/paddy/gateway/worker"
	"github.com/paddyhq/paddy/pkg/adapter"
	"github.com/paddyhq/paddy/pkg/agent"
	"github.com/paddyhq/paddy/pkg/eventstream"
	"github.com/paddyhq/paddy/pkg/utils"
)

// serviceName is reported by the health endpoint and telemetry events.
const serviceName = "paddy"

// Gateway is the OpenAI-compatible chat-completions server. It owns no
// conversation state: every request carries its full transcript, and the
// runtime is invoked fresh per exchange.
type Gateway struct {
	config     Config
	runtime    agent.Runtime
	adapter    *adapter.Adapter
	workerPool *worker.Pool
	logger     *zap.Logger
	server     *fiber.App
}

// New creates a new Gateway around the given runtime. The publisher receives
// exchange telemetry asynchronously; pass the nop publisher to disable it.
func New(config Config, runtime agent.Runtime, publisher eventstream.Publisher, logger *zap.Logger) (*Gateway, error) {
	if runtime == nil {
		return nil, fmt.Errorf("runtime is required")
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		// Enable streaming
		StreamRequestBody: true,
	})

	app.Use(recover.New())

	if len(config.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(config.CORSOrigins, ","),
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
			AllowMethods: "GET, POST, OPTIONS",
		}))
	}

	wp, err := worker.NewPool(&worker.Config{
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}

	g := &Gateway{
		config:     config,
		runtime:    runtime,
		adapter:    adapter.New(logger),
		workerPool: wp,
		logger:     logger,
		server:     app,
	}

	app.Get("/", g.handleRoot)
	app.Get("/health", g.handleHealth)
	app.Post("/v1/chat/completions", g.requireAuth, g.handleCompletions)

	return g, nil
}

// Run starts the gateway server on the configured listening address.
func (g *Gateway) Run() error {
	g.logger.Info("starting gateway server",
		zap.String("listen", g.config.ListenAddr),
		zap.String("model", g.config.Model),
		zap.Bool("streaming", g.config.StreamingEnabled),
		zap.Bool("auth", g.config.APIKey != ""),
	)

	return g.server.Listen(g.config.ListenAddr)
}

// RunWithListener starts the gateway server using the provided listener.
func (g *Gateway) RunWithListener(listener net.Listener) error {
	g.logger.Info("starting gateway server",
		zap.String("listen", listener.Addr().String()),
		zap.String("model", g.config.Model),
	)

	return g.server.Listener(listener)
}

// Close gracefully shuts down the gateway and waits for the worker pool to drain.
func (g *Gateway) Close() error {
	err := g.server.Shutdown()
	g.workerPool.Close()
	return err
}

// handleRoot reports service identity, mirroring the health payload so
// probes hitting / get a useful answer.
func (g *Gateway) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": serviceName,
		"version": utils.Version,
	})
}

// handleHealth returns the liveness payload.
func (g *Gateway) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": serviceName,
		"version": utils.Version,
	})
}
