// Osprey orchestrator server - turns natural-language requests into
// capability plans against scientific control-system infrastructure.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ospreyai/osprey/pkg/builtincaps"
	"github.com/ospreyai/osprey/pkg/checkpoint"
	"github.com/ospreyai/osprey/pkg/checkpoint/memory"
	"github.com/ospreyai/osprey/pkg/checkpoint/postgres"
	"github.com/ospreyai/osprey/pkg/cleanup"
	"github.com/ospreyai/osprey/pkg/config"
	"github.com/ospreyai/osprey/pkg/connector/mockconnector"
	"github.com/ospreyai/osprey/pkg/datasource"
	"github.com/ospreyai/osprey/pkg/datasource/githubdatasource"
	"github.com/ospreyai/osprey/pkg/events"
	"github.com/ospreyai/osprey/pkg/graph"
	"github.com/ospreyai/osprey/pkg/graph/nodes"
	"github.com/ospreyai/osprey/pkg/llmprovider"
	"github.com/ospreyai/osprey/pkg/llmprovider/anthropicprovider"
	"github.com/ospreyai/osprey/pkg/llmprovider/openaiprovider"
	"github.com/ospreyai/osprey/pkg/llmprovider/ratelimit"
	"github.com/ospreyai/osprey/pkg/masking"
	"github.com/ospreyai/osprey/pkg/queue"
	"github.com/ospreyai/osprey/pkg/registry"
	"github.com/ospreyai/osprey/pkg/slack"
	"github.com/ospreyai/osprey/pkg/state"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	ginMode := getEnv("GIN_MODE", "debug")
	gin.SetMode(ginMode)

	log.Printf("Starting Osprey")
	log.Printf("Config Directory: %s", *configDir)

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build graph runtime: %v", err)
	}
	gw := graph.NewGateway(rt.registry, nil)
	notifier := slack.NewService(slack.ServiceConfig{
		Token:   os.Getenv("SLACK_BOT_TOKEN"),
		Channel: getEnv("SLACK_CHANNEL", ""),
	})
	masker := masking.New(cfg.Masking)

	log.Println("Registry, providers, and checkpointer ready")

	cleanupSvc := cleanup.NewService(cfg.Retention, rt.runtime.Checkpointer)
	cleanupSvc.Start(ctx)
	defer cleanupSvc.Stop()

	connMgr, publisher, stopEvents, err := buildEvents(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to wire progress event stream: %v", err)
	}
	defer stopEvents()

	turnQueue := queue.NewPool(cfg.Queue)
	turnQueue.Start()
	defer turnQueue.Stop()

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"capabilities": rt.registry.Names(registry.KindCapability),
			"connectors":   rt.registry.Names(registry.KindConnector),
		})
	})

	router.GET("/events", func(c *gin.Context) {
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		connMgr.HandleConnection(c.Request.Context(), conn)
	})

	router.POST("/threads/:threadID/turns", func(c *gin.Context) {
		var body struct {
			Query string `json:"query"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		threadID := c.Param("threadID")
		reqCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
		defer cancel()

		runCfg := graph.RunConfig{ThreadID: threadID, CheckpointNS: "default"}
		s, ok, err := rt.runtime.Checkpointer.Load(reqCtx, threadID, runCfg.CheckpointNS)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			s = state.New()
		}
		s.Interface = state.Interface{Kind: state.InterfaceHTTP}

		dispatch, err := gw.Dispatch(reqCtx, s, body.Query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !dispatch.EnterGraph {
			c.JSON(http.StatusOK, gin.H{"response": masker.Mask(dispatch.Update.InputOutput.Response)})
			return
		}

		result, err := turnQueue.Submit(reqCtx, threadID, func(turnCtx context.Context) (any, error) {
			finalState, route, runErr := rt.runtime.Run(turnCtx, runCfg, dispatch.Update)
			return turnResult{state: finalState, route: route}, runErr
		})
		var final state.State
		var route graph.Route
		if tr, ok := result.(turnResult); ok {
			final, route = tr.state, tr.route
		}
		if err != nil {
			if pubErr := publisher.PublishTurnError(reqCtx, threadID, events.TurnErrorPayload{
				Type: events.EventTypeTurnError, ThreadID: threadID, Message: err.Error(),
			}); pubErr != nil {
				log.Printf("turn error event publish failed: %v", pubErr)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if route == graph.RouteApprovalPause && final.Approval.InterruptPayload != nil {
			payload := final.Approval.InterruptPayload
			if err := notifier.NotifyApprovalRequested(payload.CapabilityName, payload.OperationSummary, payload.SafetyConcerns); err != nil {
				log.Printf("approval notification failed: %v", err)
			}
			if pubErr := publisher.PublishApprovalRequested(reqCtx, threadID, events.ApprovalRequestedPayload{
				Type: events.EventTypeApprovalRequested, ThreadID: threadID,
				CapabilityName: payload.CapabilityName, OperationSummary: payload.OperationSummary,
				SafetyConcerns: payload.SafetyConcerns,
			}); pubErr != nil {
				log.Printf("approval requested event publish failed: %v", pubErr)
			}
		} else if pubErr := publisher.PublishTurnCompleted(reqCtx, threadID, events.TurnCompletedPayload{
			Type: events.EventTypeTurnCompleted, ThreadID: threadID, Route: string(route),
		}); pubErr != nil {
			log.Printf("turn completed event publish failed: %v", pubErr)
		}
		c.JSON(http.StatusOK, gin.H{
			"route":    string(route),
			"response": masker.Mask(final.InputOutput.Response),
		})
	})

	router.POST("/threads/:threadID/resume", func(c *gin.Context) {
		var body struct {
			Approved bool           `json:"approved"`
			Fields   map[string]any `json:"fields"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		reqCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
		defer cancel()

		threadID := c.Param("threadID")
		runCfg := graph.RunConfig{ThreadID: threadID, CheckpointNS: "default"}
		result, err := turnQueue.Submit(reqCtx, threadID, func(turnCtx context.Context) (any, error) {
			finalState, route, resumeErr := rt.runtime.Resume(turnCtx, runCfg, state.ResumePayload{Approved: body.Approved, Fields: body.Fields})
			return turnResult{state: finalState, route: route}, resumeErr
		})
		var final state.State
		var route graph.Route
		if tr, ok := result.(turnResult); ok {
			final, route = tr.state, tr.route
		}
		if err != nil {
			if pubErr := publisher.PublishTurnError(reqCtx, threadID, events.TurnErrorPayload{
				Type: events.EventTypeTurnError, ThreadID: threadID, Message: err.Error(),
			}); pubErr != nil {
				log.Printf("turn error event publish failed: %v", pubErr)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if pubErr := publisher.PublishTurnCompleted(reqCtx, threadID, events.TurnCompletedPayload{
			Type: events.EventTypeTurnCompleted, ThreadID: threadID, Route: string(route),
		}); pubErr != nil {
			log.Printf("turn completed event publish failed: %v", pubErr)
		}
		c.JSON(http.StatusOK, gin.H{
			"route":    string(route),
			"response": masker.Mask(final.InputOutput.Response),
		})
	})

	log.Printf("HTTP server listening on %s", cfg.HTTP.ListenAddr)
	if err := router.Run(cfg.HTTP.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// turnResult carries a graph.Runtime step's outputs through queue.Pool,
// which only knows about `any`.
type turnResult struct {
	state state.State
	route graph.Route
}

// osprey bundles the wired graph runtime with the registry that built it,
// since the gateway needs the registry directly for capability-name
// command forwarding while everything else only needs the runtime.
type osprey struct {
	registry *registry.Registry
	runtime  *graph.Runtime
}

// buildRuntime wires the registry, providers, and checkpointer named by
// cfg into a graph.Runtime. It follows registry.Init's bootstrap-order
// requirement: capability factories close over a builtincaps.RegistryRef
// that is only populated once Init has returned.
func buildRuntime(ctx context.Context, cfg *config.Config) (*osprey, error) {
	ref := &builtincaps.RegistryRef{}
	renderer := &builtincaps.StubRenderer{Dir: getEnv("OSPREY_PLOT_DIR", "")}
	capEntries := builtincaps.Registrations(ref, renderer)

	connEntries := []registry.Registration{
		{
			Kind:              registry.KindConnector,
			Name:              "control_system",
			ConnectorCategory: registry.ConnectorControlSystem,
			Description:       "Reference in-memory control-system connector, for development and tests.",
			Factory: func() (any, error) {
				return mockconnector.New(map[string]mockconnector.Channel{}), nil
			},
		},
		{
			Kind:              registry.KindConnector,
			Name:              "archiver",
			ConnectorCategory: registry.ConnectorArchiver,
			Description:       "Reference in-memory archiver connector, for development and tests.",
			Factory: func() (any, error) {
				return mockconnector.New(map[string]mockconnector.Channel{}), nil
			},
		},
	}

	framework := registry.ProviderFunc(func() any {
		return registry.StandaloneConfig{Entries: registry.RegistrySet{Capabilities: capEntries, Connectors: connEntries}}
	})
	reg, err := registry.Init(framework, nil)
	if err != nil {
		return nil, err
	}
	ref.Set(reg)

	provider, err := buildProvider(cfg.Models)
	if err != nil {
		return nil, err
	}

	checkpointer, err := buildCheckpointer(ctx, cfg.Checkpointer, cfg.Database)
	if err != nil {
		return nil, err
	}

	var ds datasource.Provider
	if cfg.DataSource.RepoURL != "" {
		ds = githubdatasource.New(cfg.DataSource)
	}

	limits := graph.LimitsView{
		MaxExecutionRetries:  cfg.AgentControl.Limits.MaxExecutionRetries,
		MaxReclassifications: cfg.AgentControl.Limits.MaxReclassifications,
		MaxGenerationRetries: cfg.AgentControl.Limits.MaxGenerationRetries,
	}

	rt := &graph.Runtime{
		Limits:       limits,
		Checkpointer: checkpointer,
		NodeRunner:   graph.NewNodeRunner(reg),
		TaskExtraction: &nodes.TaskExtraction{
			Provider:      provider,
			DataSource:    ds,
			ExtraExamples: nodes.TaskExtractionDefaultExamples,
		},
		Classification: &nodes.Classification{
			Registry:    reg,
			Provider:    provider,
			Concurrency: cfg.AgentControl.Limits.MaxConcurrentClassifications,
		},
		Orchestration: &nodes.Orchestration{
			Registry:        reg,
			Provider:        provider,
			MaxSummaryChars: cfg.AgentControl.Limits.MaxSummaryChars,
		},
		Respond: &graph.Respond{Provider: provider, MaxSummaryChars: cfg.AgentControl.Limits.MaxSummaryChars},
		Clarify: &graph.Clarify{},
		Error:   &graph.ErrorNode{},
	}

	return &osprey{registry: reg, runtime: rt}, nil
}

func buildProvider(models config.ModelsConfig) (llmprovider.Provider, error) {
	sel, ok := models.RoleFor(config.ModelRoleResponse)
	if !ok {
		return nil, errNoModelConfigured
	}

	roles := map[string]string{}
	for _, role := range []config.ModelRole{
		config.ModelRoleClassifier, config.ModelRoleOrchestrator, config.ModelRoleTaskExtraction,
		config.ModelRoleResponse, config.ModelRoleClarify, config.ModelRoleError,
		config.ModelRoleChannelFinder, config.ModelRoleCodeGenerator,
	} {
		if s, ok := models.RoleFor(role); ok {
			roles[string(role)] = s.Model
		}
	}

	var provider llmprovider.Provider
	var err error
	switch sel.Provider {
	case "anthropic":
		provider, err = anthropicprovider.NewFromAPIKey(os.Getenv("ANTHROPIC_API_KEY"), anthropicprovider.RoleModels(roles), 4096)
	default:
		provider, err = openaiprovider.NewFromAPIKey(os.Getenv("OPENAI_API_KEY"), openaiprovider.RoleModels(roles), 4096)
	}
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(60, 120)
	return limiter.Wrap(provider), nil
}

func buildCheckpointer(ctx context.Context, cfg config.CheckpointerConfig, db config.DatabaseConfig) (checkpoint.Checkpointer, error) {
	if cfg.Backend != config.CheckpointerBackendPostgres {
		return memory.New(), nil
	}

	store, err := postgres.Open(ctx, postgres.Config{
		Host: db.Host, Port: db.Port, User: db.User,
		Password: db.Password, Database: db.Database, SSLMode: db.SSLMode,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// buildEvents wires the WebSocket connection manager and a Publisher
// matching cfg.Checkpointer.Backend: the in-memory checkpointer pairs with
// a LocalPublisher (no persistence, nothing else to stay in sync with),
// the Postgres checkpointer pairs with an events.Store relayed through
// LISTEN/NOTIFY so late subscribers can catch up. The returned stop func
// tears down the NotifyListener, if one was started.
func buildEvents(ctx context.Context, cfg *config.Config) (*events.ConnectionManager, events.Publisher, func(), error) {
	if cfg.Checkpointer.Backend != config.CheckpointerBackendPostgres {
		manager := events.NewConnectionManager(nil, 10*time.Second)
		return manager, events.NewLocalPublisher(manager), func() {}, nil
	}

	store, err := events.Open(ctx, events.Config{
		Host: cfg.Database.Host, Port: cfg.Database.Port, User: cfg.Database.User,
		Password: cfg.Database.Password, Database: cfg.Database.Database, SSLMode: cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	manager := events.NewConnectionManager(store, 10*time.Second)
	listener := events.NewNotifyListener(events.Config{
		Host: cfg.Database.Host, Port: cfg.Database.Port, User: cfg.Database.User,
		Password: cfg.Database.Password, Database: cfg.Database.Database, SSLMode: cfg.Database.SSLMode,
	}.DSN(), manager)
	if err := listener.Start(ctx); err != nil {
		return nil, nil, nil, err
	}
	manager.SetListener(listener)

	stop := func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		listener.Stop(stopCtx)
	}
	return manager, store, stop, nil
}

var errNoModelConfigured = graphConfigError("osprey: no model configured for role \"response\"")

type graphConfigError string

func (e graphConfigError) Error() string { return string(e) }
