// Package main implements tripsync, a daemon that synchronizes a
// partner's daily trip-export file into a destination store: it fetches
// the export over SFTP, parses and projects the records, and delivers
// them to either a reporting spreadsheet (append) or a document store
// (keyed upsert).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-lab/go/flagx"

	"tripsync/internal/config"
	"tripsync/internal/pipeline"
	"tripsync/internal/pipeline/sinks"
	"tripsync/internal/pipeline/sources"
	"tripsync/internal/service"
	"tripsync/internal/storage"
)

var (
	// Flags related to the file source. Each can also be set via the
	// environment (SFTP_HOST, SFTP_PORT, ...).
	sftpHost    = flag.String("sftp-host", "", "SFTP host of the partner export endpoint")
	sftpPort    = flag.Int("sftp-port", 22, "SFTP port")
	sftpUser    = flag.String("sftp-user", "", "SFTP username")
	sftpKeyFile = flag.String("sftp-key-file", "", "path to the SFTP private key (PEM)")
	remoteDir   = flag.String("remote-dir", "/upload", "remote directory containing the daily exports")
	localDir    = flag.String("local-dir", "", "read exports from a local directory instead of SFTP (dev/replay)")

	// Flags related to the destination.
	sinkKind        = flag.String("sink", config.SinkMongo, "destination: \"mongo\" (keyed upsert) or \"sheet\" (append push)")
	sheetEndpoint   = flag.String("sheet-endpoint", "", "URL of the spreadsheet append endpoint")
	mongoURI        = flag.String("mongo-uri", "", "MongoDB connection URI")
	mongoDatabase   = flag.String("mongo-database", "tripsync", "MongoDB database name")
	mongoCollection = flag.String("mongo-collection", "trips", "MongoDB collection name")

	// Flags related to triggering.
	schedule   = flag.String("schedule", "", "cron expression for recurring runs (empty disables the schedule)")
	timezone   = flag.String("timezone", "", "IANA timezone for schedule evaluation (default: process local zone)")
	runAtStart = flag.Bool("run-at-start", false, "run the pipeline once immediately at startup")

	// Flags related to policy and local state.
	excludeGroups = flag.String("exclude-groups", "", "comma-separated group names dropped on the document-store path")
	stateDB       = flag.String("state-db", "", "path to the SQLite run-history file (empty disables history)")

	// Manual replay.
	runDate = flag.String("run-date", "", "process the export for this date (YYYY-MM-DD) instead of the day before the run time")
)

func main() {
	log.SetFlags(log.LstdFlags)

	flag.Parse()
	if err := flagx.ArgsFromEnv(flag.CommandLine); err != nil {
		log.Fatalf("failed to get args from the environment: %v", err)
	}

	cfg := &config.Config{
		SFTPHost:        *sftpHost,
		SFTPPort:        *sftpPort,
		SFTPUser:        *sftpUser,
		SFTPKeyFile:     *sftpKeyFile,
		RemoteDir:       *remoteDir,
		LocalDir:        *localDir,
		SinkKind:        *sinkKind,
		SheetEndpoint:   *sheetEndpoint,
		MongoURI:        *mongoURI,
		MongoDatabase:   *mongoDatabase,
		MongoCollection: *mongoCollection,
		Schedule:        *schedule,
		Timezone:        *timezone,
		RunAtStart:      *runAtStart,
		ExcludeGroups:   config.ParseGroups(*excludeGroups),
		StateDB:         *stateDB,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	ctx := context.Background()

	var runs *storage.RunStore
	if cfg.StateDB != "" {
		db, err := storage.New(cfg.StateDB)
		if err != nil {
			log.Fatalf("open state db: %v", err)
		}
		defer db.Close()
		runs = storage.NewRunStore(db)
	}

	sink, transforms, cleanup, err := buildSink(ctx, cfg)
	if err != nil {
		log.Fatalf("configure sink: %v", err)
	}
	defer cleanup()

	engine := &pipeline.Engine{
		Open:       buildSourceFactory(cfg),
		Transforms: transforms,
		Sink:       sink,
	}
	if *runDate != "" {
		d, err := time.Parse("2006-01-02", *runDate)
		if err != nil {
			log.Fatalf("invalid -run-date %q: %v", *runDate, err)
		}
		// The expected filename is derived from the day before the
		// reference time, so shift the override forward by one.
		engine.Now = func() time.Time { return d.AddDate(0, 0, 1) }
	}
	svc := service.New(engine, runs)

	if cfg.RunAtStart {
		result, err := svc.RunOnce(ctx)
		if err != nil {
			if cfg.Schedule == "" {
				log.Fatalf("initial run failed: %v", err)
			}
			log.Printf("initial run failed: %v", err)
		} else if result.Status == pipeline.StatusSkipped && cfg.Schedule == "" {
			return
		}
	}
	if cfg.Schedule == "" {
		return
	}

	if err := svc.StartSchedule(cfg.Schedule, loc); err != nil {
		log.Fatalf("configure schedule: %v", err)
	}

	// Block until asked to stop, then let an in-flight run drain.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received %s, shutting down", sig)

	svc.Stop()
	drainCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	svc.WaitRunning(drainCtx)
}

// buildSourceFactory returns the per-run source opener: a local
// directory when -local-dir is set, the partner SFTP endpoint otherwise.
func buildSourceFactory(cfg *config.Config) pipeline.SourceFactory {
	if cfg.LocalDir != "" {
		dir := cfg.LocalDir
		return func(ctx context.Context) (pipeline.Source, error) {
			return sources.OpenLocal(ctx, dir)
		}
	}
	sftpCfg := sources.SFTPConfig{
		Host:      cfg.SFTPHost,
		Port:      cfg.SFTPPort,
		User:      cfg.SFTPUser,
		KeyFile:   cfg.SFTPKeyFile,
		RemoteDir: cfg.RemoteDir,
	}
	return func(ctx context.Context) (pipeline.Source, error) {
		return sources.OpenSFTP(ctx, sftpCfg)
	}
}

// buildSink constructs the configured sink and the transform chain that
// feeds it. The group-exclusion filter applies only to the
// document-store path; the spreadsheet push keeps every row.
func buildSink(ctx context.Context, cfg *config.Config) (pipeline.Sink, []pipeline.Transformer, func(), error) {
	switch cfg.SinkKind {
	case config.SinkSheet:
		sink := sinks.NewSheet(cfg.SheetEndpoint)
		return sink, []pipeline.Transformer{pipeline.SheetProjection{}}, func() {}, nil
	case config.SinkMongo:
		sink, err := sinks.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, nil, nil, err
		}
		transforms := []pipeline.Transformer{
			&pipeline.ExcludeGroups{Excluded: cfg.ExcludeGroups},
			pipeline.DocProjection{},
		}
		cleanup := func() {
			if err := sink.Close(); err != nil {
				log.Printf("[MONGO] Disconnect: %v", err)
			}
		}
		return sink, transforms, cleanup, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown sink kind %q", cfg.SinkKind)
}
