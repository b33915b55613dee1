package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aethergs/server/internal/config"
	"github.com/aethergs/server/internal/gamedata"
	"github.com/aethergs/server/internal/handler"
	gonet "github.com/aethergs/server/internal/net"
	"github.com/aethergs/server/internal/persist"
	"github.com/aethergs/server/internal/scripting"
	"github.com/aethergs/server/internal/sim"
	"github.com/aethergs/server/internal/wire"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("AETHERGS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting",
		zap.String("server", cfg.Server.Name),
		zap.Int("id", cfg.Server.ID))

	// 3. Connect to PostgreSQL and run migrations
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelBoot()

	db, err := persist.NewDB(bootCtx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := persist.RunMigrations(bootCtx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// 4. Persistence worker
	playerRepo := persist.NewPlayerRepo(db)
	worker := persist.NewWorker(playerRepo, cfg.Database.SaveQueueSize, log)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go worker.Run(workerCtx)

	// 5. Load static data
	store, err := gamedata.LoadStore(cfg.Data.AbilityDir, log)
	if err != nil {
		return fmt.Errorf("load abilities: %w", err)
	}
	log.Info("abilities loaded", zap.Int("count", store.Count()))

	scenes, err := gamedata.LoadSceneTable(cfg.Data.SceneList)
	if err != nil {
		return fmt.Errorf("load scenes: %w", err)
	}
	avatars, err := gamedata.LoadAvatarTable(cfg.Data.AvatarList)
	if err != nil {
		return fmt.Errorf("load avatars: %w", err)
	}
	cmdTable, err := wire.LoadCmdTable(cfg.Data.CmdTable)
	if err != nil {
		return fmt.Errorf("load cmd table: %w", err)
	}
	codec := wire.NewJSONCodec(cmdTable)
	log.Info("data loaded",
		zap.Int("scenes", scenes.Count()),
		zap.Int("avatars", avatars.Count()))

	// 6. Lua trigger engine
	luaEngine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()

	// 7. Sessions and outbound sink
	sessions := gonet.NewSessionStore(log)
	output := gonet.NewOutputSink(sessions, codec, log)

	// 8. Handler registry and simulator
	gmTokenHash := ""
	if cfg.GM.Enabled {
		gmTokenHash = cfg.GM.TokenHash
	}
	registry := sim.NewRegistry(log)
	handler.RegisterAll(registry, &handler.Deps{
		Codec:       codec,
		Store:       store,
		GMTokenHash: gmTokenHash,
		Log:         log,
	})

	simulator := sim.NewSimulator(&sim.Deps{
		Codec:           codec,
		Store:           store,
		Scenes:          scenes,
		Avatars:         avatars,
		Handlers:        registry,
		Persist:         worker,
		Scripts:         luaEngine,
		DefaultAvatarID: cfg.Simulation.DefaultAvatarID,
		SaveInterval:    cfg.Simulation.SaveInterval,
		Log:             log,
	}, cfg.Simulation.MailboxSize, cfg.Simulation.TickRate)

	// 9. Network server with the gateway as packet callback
	gw := &gateway{
		sim:       simulator,
		sessions:  sessions,
		output:    output,
		worker:    worker,
		codec:     codec,
		gmEnabled: cfg.GM.Enabled,
		log:       log,
	}
	netServer, err := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.OutQueueSize,
		cfg.Network.PacketsPerSecond,
		cfg.Network.WriteTimeout,
		sessions,
		gw.onPacket,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	sweepStop := make(chan struct{})
	go sessions.RunSweeper(cfg.Network.IdleSweepEvery, cfg.Network.IdleTimeout, sweepStop)

	// 10. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	log.Info("ready",
		zap.String("addr", netServer.Addr().String()),
		zap.Duration("tick", cfg.Simulation.TickRate))

	for {
		select {
		case <-ticker.C:
			simulator.TickAll()
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			close(sweepStop)
			netServer.Shutdown()
			simulator.Shutdown()
			stopWorker()
			worker.Wait()
			log.Info("stopped")
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
