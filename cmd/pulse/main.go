package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/token-pulse/internal/api"
	"github.com/rovshanmuradov/token-pulse/internal/config"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/engine"
	"github.com/rovshanmuradov/token-pulse/internal/events"
	"github.com/rovshanmuradov/token-pulse/internal/export"
	"github.com/rovshanmuradov/token-pulse/internal/logger"
	"github.com/rovshanmuradov/token-pulse/internal/source"
	"github.com/rovshanmuradov/token-pulse/internal/ui"
	"github.com/rovshanmuradov/token-pulse/internal/ui/router"
	"github.com/rovshanmuradov/token-pulse/internal/ui/screen"
	"github.com/rovshanmuradov/token-pulse/internal/ui/state"
	"github.com/rovshanmuradov/token-pulse/internal/utils/metrics"
	"go.uber.org/zap"
)

// AppModel is the root tea model. It owns the router and nothing else.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

func NewAppModel(root router.Screen) *AppModel {
	return &AppModel{router: router.New(root)}
}

func (m *AppModel) Init() tea.Cmd {
	return m.router.Init()
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	_, cmd := m.router.Update(msg)
	return m, cmd
}

func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return m.router.View()
}

func main() {
	configPath := flag.String("config", "", "Path to config file (json or yaml)")
	headless := flag.Bool("headless", false, "Run without the terminal UI")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// the terminal belongs to the UI, so the TUI logs to a file and a ring
	var (
		appLogger *zap.Logger
		logBuffer *logger.LogBuffer
	)
	if *headless {
		appLogger, err = logger.CreatePrettyLogger(cfg.DebugLogging)
		if err != nil {
			log.Fatalf("Failed to init logger: %v", err)
		}
	} else {
		logBuffer = logger.NewLogBuffer(100)
		fileCfg := logger.DefaultFileConfig()
		fileCfg.LogFile = cfg.LogFile
		fileCfg.Debug = cfg.DebugLogging
		appLogger = logger.CreateTUILogger(fileCfg, logBuffer)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	if err := run(rootCtx, cfg, appLogger, logBuffer, *headless); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Token pulse stopped with error", zap.Error(err))
		_ = appLogger.Sync()
		log.Fatalf("token-pulse: %v", err)
	}
}

func newSource(cfg *config.Config) source.DataSource {
	if cfg.DataSource == config.DataSourceFile {
		return source.NewFileSource(cfg.DataFile)
	}
	return source.NewRandomSource(cfg.RandomSeed, cfg.TokensPerCategory)
}

func run(ctx context.Context, cfg *config.Config, appLogger *zap.Logger, logBuffer *logger.LogBuffer, headless bool) error {
	mc := metrics.NewCollector(cfg.MetricsNamespace)

	eng, err := engine.New(engine.Options{
		Source:          newSource(cfg),
		Logger:          appLogger,
		Metrics:         mc,
		InitialCategory: domain.Category(cfg.DefaultCategory),
		SeedDelay:       cfg.SeedDelay,
		TickInterval:    cfg.TickInterval,
		HighlightWindow: cfg.HighlightWindow,
		JanitorInterval: cfg.JanitorInterval,
		LoadRetries:     cfg.LoadRetries,
	})
	if err != nil {
		return err
	}
	defer eng.Stop()

	if cfg.HTTPAddr != "" {
		handler := api.BuildRouter(
			api.NewAPI(appLogger, eng, cfg.ViewSpec()).WithQuickBuyAmount(cfg.QuickBuyAmount),
			api.NewLogging(appLogger),
			mc.Handler(),
		)
		srv := api.NewServer(appLogger, cfg.HTTPAddr, handler)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				appLogger.Warn("HTTP shutdown incomplete", zap.Error(err))
			}
		}()
	}

	if headless {
		sub := eng.Subscribe(events.TokenMutated, events.On(func(_ context.Context, e events.TokenMutatedEvent) error {
			appLogger.Debug("Token mutated",
				zap.String("category", string(e.Category)),
				zap.String("token", e.After.Symbol),
				zap.Float64("price_change_24h", e.After.PriceChange24h))
			return nil
		}))
		defer sub.Unsubscribe()

		if err := eng.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	}

	sender := ui.NewUpdateSender(make(chan tea.Msg, ui.DefaultBusSize), appLogger, mc)
	defer sender.Close()
	unforward := ui.Forward(eng, sender)
	defer unforward()

	if err := eng.Start(ctx); err != nil {
		return err
	}

	cache := state.NewViewCache(appLogger, cfg.ViewSpec())
	recovery := ui.NewRecoveryHandler(appLogger, func() (tea.Model, []tea.ProgramOption) {
		pulse := screen.NewPulseScreen(eng, cache, sender.Messages(), logBuffer).
			SetQuickBuyAmount(cfg.QuickBuyAmount).
			SetExporter(export.NewExporter(appLogger, nil), cfg.ExportDir, export.Format(cfg.ExportFormat)).
			SetLogSource(logBuffer)
		return ui.NewSafeUIWrapper(NewAppModel(pulse), appLogger), []tea.ProgramOption{
			tea.WithAltScreen(),
		}
	})
	return recovery.RunWithRecovery(ctx)
}
