package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"measure-error/internal/env"
	"measure-error/internal/logging"
	"measure-error/internal/storage"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"golang.org/x/xerrors"
)

func main() {
	if err := env.Load(".env"); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}

	var threshold int
	var storageBackend string
	var directory string
	var callbackURL string
	var schedule string
	flag.IntVar(&threshold, "threshold", env.OrDefault("NEIGHBOR_THRESHOLD", 3), "Same-colored neighbors that mask a mismatch")
	flag.StringVar(&storageBackend, "storage-backend", env.OrDefault("STORAGE_BACKEND", "file"), "Storage backend (file or s3)")
	flag.StringVar(&directory, "directory", env.OrDefault("DIRECTORY", "/tmp"), "Output directory of the file backend")
	flag.StringVar(&callbackURL, "callback-url", env.OrDefault("CALLBACK_URL", ""), "Callback URL to send results to")
	flag.StringVar(&schedule, "schedule", env.OrDefault("SCHEDULE", ""), "Cron schedule to repeat the measurement on (e.g. @every 1h)")

	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		log.Fatalf("work, reference not specified")
	}

	work := args[0]
	reference := args[1]

	logger, err := logging.New(os.Stderr, false)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	slog.SetDefault(logger)

	ctx := context.Background()

	s, err := storage.New(ctx, storage.Config{
		Backend: storageBackend,
		File: storage.FileConfig{
			Directory: directory,
		},
		S3: storage.S3Config{
			Bucket:      os.Getenv("S3_BUCKET"),
			EndpointURL: os.Getenv("S3_ENDPOINT_URL"),
		},
	})
	if err != nil {
		log.Fatalf("failed to create storage backend: %v", err)
	}

	worker := &Worker{
		Storage:   s,
		Threshold: threshold,
	}
	client := newCallbackClient()

	run := func(ctx context.Context) error {
		result, err := worker.process(ctx, work, reference)
		if err != nil {
			return xerrors.Errorf("failed to process measurement: %w", err)
		}

		j, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return xerrors.Errorf("failed to marshal result: %w", err)
		}

		if callbackURL == "" {
			fmt.Println(string(j))
			return nil
		}
		if err := callback(ctx, client, callbackURL, j); err != nil {
			return xerrors.Errorf("failed to send callback: %w", err)
		}
		return nil
	}

	if schedule == "" {
		if err := run(ctx); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	if err := runScheduled(ctx, schedule, run); err != nil {
		log.Fatalf("%v", err)
	}
}

// runScheduled calls run on every tick of schedule until SIGTERM or SIGINT.
// A failed run is logged and does not stop the schedule.
func runScheduled(ctx context.Context, schedule string, run func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, os.Interrupt)
	defer stop()

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := run(ctx); err != nil {
			slog.ErrorContext(ctx, "scheduled measurement failed", "error", err)
		}
	}); err != nil {
		return xerrors.Errorf("failed to parse schedule %q: %w", schedule, err)
	}

	slog.InfoContext(ctx, "scheduled", "schedule", schedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
