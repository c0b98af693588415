package main

import (
	"context"
	"flag"
	"log"
	"measure-error/internal/env"
	"measure-error/internal/runnable"
	"measure-error/internal/storage"
	"os"
)

func main() {
	if err := env.Load(".env"); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	var storageBackend string
	var directory string
	flag.BoolVar(&runnable.Debug, "debug", env.OrDefault("DEBUG", false), "Enable pprof endpoints and text logs")
	flag.StringVar(&storageBackend, "storage-backend", env.OrDefault("STORAGE_BACKEND", "file"), "Storage backend for highlights (file or s3)")
	flag.StringVar(&directory, "directory", env.OrDefault("DIRECTORY", "/tmp"), "Output directory of the file backend")

	flag.Parse()

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
		log.Fatalf("Failed to create storage backend: %v", err)
	}

	server := runnable.NewServer(s)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
