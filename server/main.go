package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"drawbench/server/agent"
	"drawbench/server/config"
	"drawbench/server/judge"
	"drawbench/server/logging"
	"drawbench/server/match"
	"drawbench/server/sink"
	"drawbench/server/store"
)

var stopFlag atomic.Bool

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n\n%s\n", err, config.Usage())
		os.Exit(2)
	}
	config.LoadAPIKeyFromSecret()

	log, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	if !cfg.Color() {
		pterm.DisableColor()
	}

	var migrate, serve bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--serve":
			serve = true
		case "--help", "-h":
			fmt.Println("usage: drawbench [--migrate | --serve]\n\n" + config.Usage())
			return
		default:
			log.Fatal("unknown argument", zap.String("arg", a))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)

	switch {
	case migrate:
		err = runMigrate(ctx, cfg, log)
	case serve:
		err = runServer(ctx, cfg, log)
	default:
		err = runMatch(ctx, cfg, log)
	}
	if err != nil {
		log.Fatal("exiting", zap.Error(err))
	}
}

func watchSignals(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	stopFlag.Store(true)
	cancel()
}

// stopper polls the stop flag, MAX_SECONDS and STOP_FILE.
func stopper(cfg *config.Config) func() bool {
	var deadline time.Time
	if cfg.MaxSeconds > 0 {
		deadline = time.Now().Add(time.Duration(cfg.MaxSeconds) * time.Second)
	}
	return func() bool {
		if stopFlag.Load() {
			return true
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			stopFlag.Store(true)
			return true
		}
		if cfg.StopFile != "" {
			if _, err := os.Stat(cfg.StopFile); err == nil {
				stopFlag.Store(true)
				return true
			}
		}
		return false
	}
}

func openDB(ctx context.Context, cfg *config.Config, log *zap.Logger) (*store.DB, error) {
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := store.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrated")
	}
	return db, nil
}

func runMigrate(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("--migrate needs DATABASE_URL")
	}
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("migrated")
	return nil
}

func runServer(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("--serve needs DATABASE_URL")
	}
	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      Router(db, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	log.Info("listening", zap.String("addr", "http://localhost:"+cfg.Port))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openSinks builds the configured sinks. Optional backends that fail to
// open are logged and left out, as is the database.
func openSinks(ctx context.Context, cfg *config.Config, matchID uuid.UUID, base uint64, log *zap.Logger) (sink.Multi, *store.DB) {
	var out sink.Multi
	if cfg.CSVPath != "" {
		c, err := sink.NewCSVFile(cfg.CSVPath, sink.Sampler{
			Rate:     cfg.CSVSampleRate,
			DrawRate: cfg.CSVDrawSampleRate,
			Seed:     int64(base),
		})
		if err != nil {
			log.Warn("csv sink disabled", zap.String("path", cfg.CSVPath), zap.Error(err))
		} else {
			out = append(out, c)
		}
	}

	var db *store.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = openDB(ctx, cfg, log)
		if err != nil {
			log.Warn("DB disabled (open failed)", zap.Error(err))
			db = nil
		} else {
			out = append(out, sink.NewPostgres(db, matchID))
		}
	}

	if cfg.AMQPURL != "" {
		a, err := sink.NewAMQP(sink.AMQPConfig{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.AMQPExchange,
			RoutingKey: cfg.AMQPRoutingKey,
			Durable:    true,
		})
		if err != nil {
			log.Warn("amqp sink disabled", zap.Error(err))
		} else {
			out = append(out, a)
		}
	}

	if cfg.RedisURL != "" {
		r, err := sink.NewRedisStream(ctx, cfg.RedisURL, cfg.RedisStream, cfg.RedisMaxLen)
		if err != nil {
			log.Warn("redis sink disabled", zap.Error(err))
		} else {
			out = append(out, r)
		}
	}
	return out, db
}

func runMatch(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	oracle := judge.NewOracle(cfg.OracleSamples)
	deps := agent.Deps{Oracle: oracle, LLMTimeout: cfg.LLMTimeout(), Logger: log}
	fa, err := agent.ParseFactory(cfg.PlayerA, deps)
	if err != nil {
		return fmt.Errorf("PLAYER_A: %w", err)
	}
	fb, err := agent.ParseFactory(cfg.PlayerB, deps)
	if err != nil {
		return fmt.Errorf("PLAYER_B: %w", err)
	}

	base, ok, err := cfg.Seed()
	if err != nil {
		return err
	}
	if !ok {
		base = match.SecureBaseSeed()
	}

	matchID := uuid.New()
	sinks, db := openSinks(ctx, cfg, matchID, base, log)
	defer func() {
		if err := sinks.Close(); err != nil {
			log.Warn("closing sinks", zap.Error(err))
		}
		if db != nil {
			db.Close()
		}
	}()

	m := store.Match{
		ID:           matchID,
		PlayerA:      cfg.PlayerA,
		PlayerB:      cfg.PlayerB,
		HandsPlanned: cfg.Hands,
		DeckSeedBase: int64(base),
		TiePolicy:    cfg.TiePolicy,
	}
	if db != nil {
		if err := db.CreateMatch(ctx, m); err != nil {
			return fmt.Errorf("create match: %w", err)
		}
	}

	pterm.DefaultSection.Println("DrawBench")
	pterm.Info.Printfln("match %s  A=%s  B=%s  hands=%d  seed=%d", matchID, cfg.PlayerA, cfg.PlayerB, cfg.Hands, base)
	pterm.Info.Println("Ctrl+C stops after the hands already dealt.")

	bar := progressbar.NewOptions(cfg.Hands,
		progressbar.OptionSetDescription("hands"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionEnableColorCodes(cfg.Color()),
		progressbar.OptionClearOnFinish(),
	)
	runner := match.NewRunner(match.Config{
		MatchID:        matchID.String(),
		Hands:          cfg.Hands,
		Workers:        cfg.Workers,
		SeedBase:       base,
		TiePolicy:      match.TiePolicy(cfg.TiePolicy),
		Oracle:         oracle,
		EloStart:       cfg.EloStart,
		EloK:           cfg.EloK,
		EloWeightByPot: cfg.EloWeightByPot,
		Stop:           stopper(cfg),
		OnHand:         func(sink.Hand) { _ = bar.Add(1) },
	}, fa, fb, sinks, log)

	sum, runErr := runner.Run(ctx)
	_ = bar.Finish()
	printSummary(sum)

	if db != nil {
		m.HandsPlayed, m.Aborted = sum.Played, sum.Aborted
		m.NetA = sum.Players[0].Overall.NetChips
		// ctx may already be cancelled
		if err := db.CompleteMatch(context.WithoutCancel(ctx), m, participants(sum)); err != nil {
			log.Error("complete match", zap.Error(err))
		} else {
			log.Info("match persisted", zap.String("match_id", matchID.String()))
		}
	}
	return runErr
}
