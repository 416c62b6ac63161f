package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"reviewpipe/internal/database/boltstore"
	"reviewpipe/internal/database/redistore"
	"reviewpipe/internal/ingest"
	"reviewpipe/internal/ledger"
	"reviewpipe/internal/pipeline"
	"reviewpipe/internal/stages"
	"reviewpipe/internal/tracing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure zerolog
	// Set log level from environment (default: info)
	logLevel := os.Getenv("LOG_LEVEL")
	switch logLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info", "":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Use pretty console logging in development, JSON in production
	if os.Getenv("LOG_FORMAT") == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	log.Info().Msg("Starting review pipeline")

	inputPath := os.Getenv("REVIEWPIPE_INPUT")
	if len(os.Args) > 1 {
		inputPath = os.Args[1]
	}
	if inputPath == "" {
		log.Fatal().Msg("No input file: pass a path argument or set REVIEWPIPE_INPUT")
	}

	cfg := pipeline.DefaultConfig()
	cfg.BatchSize = envInt("BATCH_SIZE", cfg.BatchSize)
	cfg.MaxWorkers = envInt("MAX_WORKERS", cfg.MaxWorkers)
	cfg.MaxReviews = envInt("MAX_REVIEWS", cfg.MaxReviews)
	cfg.StartIndex = envInt("START_INDEX", cfg.StartIndex)
	cfg.BanThreshold = envInt("BAN_THRESHOLD", cfg.BanThreshold)
	cfg.RetryLimit = envInt("RETRY_LIMIT", cfg.RetryLimit)
	if v := os.Getenv("STAGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatal().Err(err).Str("value", v).Msg("Invalid STAGE_TIMEOUT")
		}
		cfg.StageTimeout = d
	}

	// Ctrl-C / SIGTERM cancel the run at the next batch barrier; the
	// report then covers the batches that completed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Pick the ban ledger backend: bolt file, redis, or in-memory.
	banLedger, closeLedger := openLedger(ctx, cfg.BanThreshold)
	defer closeLedger()

	// Tracing is opt-in: spans are exported only when an OTLP endpoint is
	// configured, otherwise the no-op global tracer stays in place.
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		tp, err := tracing.Init(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracing")
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("Failed to shut down tracer provider")
			}
		}()
		log.Info().Msg("Tracing enabled")
	}

	// Optional Prometheus endpoint for long runs
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info().Str("address", addr).Msg("Metrics endpoint listening")
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error().Err(err).Msg("Metrics endpoint failed")
			}
		}()
	}

	src, err := ingest.Open(inputPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", inputPath).Msg("Failed to open input")
	}
	defer src.Close()

	dispatcher, err := pipeline.NewDispatcher(cfg, pipeline.Deps{
		Preprocess: stages.NewPreprocessor(nil),
		Profanity:  stages.NewProfanityChecker(nil, banLedger),
		Sentiment:  stages.NewSentimentAnalyzer(nil),
		Ledger:     banLedger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("input", inputPath).
		Int("batch_size", cfg.BatchSize).
		Int("max_workers", cfg.MaxWorkers).
		Int("ban_threshold", cfg.BanThreshold).
		Msg("Dispatcher configured")

	report, err := dispatcher.Run(ctx, src)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Run failed")
	}
	if errors.Is(err, context.Canceled) {
		log.Warn().Msg("Run interrupted, writing partial report")
	}

	if err := writeReport(report); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}
}

// envInt reads an integer environment variable, falling back to def when
// unset. A malformed value is a configuration error and aborts startup.
func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatal().Str("variable", name).Str("value", v).Msg("Invalid integer environment variable")
	}
	return n
}

// openLedger selects the ban ledger backend from the environment:
// REVIEWPIPE_DB_PATH for a bolt file, REVIEWPIPE_REDIS_ADDR for redis,
// in-memory otherwise.
func openLedger(ctx context.Context, threshold int) (ledger.Ledger, func()) {
	if dbPath := os.Getenv("REVIEWPIPE_DB_PATH"); dbPath != "" {
		store, err := boltstore.Open(boltstore.Options{Path: dbPath})
		if err != nil {
			log.Fatal().Err(err).Str("path", dbPath).Msg("Failed to open database")
		}
		log.Info().Str("path", dbPath).Msg("Ban ledger backed by bolt database")
		return store.LedgerStore(threshold), func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close database")
			}
		}
	}

	if addr := os.Getenv("REVIEWPIPE_REDIS_ADDR"); addr != "" {
		l, err := redistore.Dial(ctx, addr, threshold)
		if err != nil {
			log.Fatal().Err(err).Str("address", addr).Msg("Failed to connect to redis")
		}
		log.Info().Str("address", addr).Msg("Ban ledger backed by redis")
		return l, func() {
			if err := l.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close redis connection")
			}
		}
	}

	log.Info().Msg("Ban ledger held in memory, state is not persisted")
	return ledger.NewMemory(threshold), func() {}
}

// writeReport emits the final report as indented JSON, to the path in
// REVIEWPIPE_REPORT or stdout when unset.
func writeReport(report *pipeline.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path := os.Getenv("REVIEWPIPE_REPORT"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Report written")
		return nil
	}

	_, err = os.Stdout.Write(data)
	return err
}
