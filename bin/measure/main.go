package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	diffimage "measure-error/internal/diff/image"
	"measure-error/internal/env"
	"measure-error/internal/storage"
	"os"
	"time"
)

type MeasureOutput struct {
	TotalError    int     `json:"totalError"`
	QualityError  int     `json:"qualityError"`
	DiffAmount    float64 `json:"diffAmount"`
	HighlightPath string  `json:"highlightPath,omitempty"`
}

func main() {
	if err := env.Load(".env"); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	var threshold int
	var highlight bool
	var storageBackend string
	var directory string
	flag.IntVar(&threshold, "threshold", env.OrDefault("NEIGHBOR_THRESHOLD", 3), "Same-colored neighbors that mask a mismatch")
	flag.BoolVar(&highlight, "highlight", env.OrDefault("HIGHLIGHT", false), "Store a PNG marking quality errors red and masked mismatches amber")
	flag.StringVar(&storageBackend, "storage-backend", env.OrDefault("STORAGE_BACKEND", "file"), "Storage backend for the highlight (file or s3)")
	flag.StringVar(&directory, "directory", env.OrDefault("DIRECTORY", "/tmp"), "Output directory of the file backend")

	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		log.Fatalf("work, reference not specified")
	}

	workPath := args[0]
	referencePath := args[1]

	workImage, err := diffimage.Load(workPath)
	if err != nil {
		log.Fatalf("Failed to load work image: %v", err)
	}

	referenceImage, err := diffimage.Load(referencePath)
	if err != nil {
		log.Fatalf("Failed to load reference image: %v", err)
	}

	result, err := diffimage.NewQualityDiff(threshold).Calculate(referenceImage, workImage)
	if err != nil {
		log.Fatalf("Failed to measure: %v", err)
	}

	output := MeasureOutput{
		TotalError:   result.TotalErrors,
		QualityError: result.QualityErrors,
		DiffAmount:   result.DiffAmount,
	}

	if highlight {
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

		data, err := diffimage.EncodePNG(result.Image)
		if err != nil {
			log.Fatalf("Failed to encode highlight image: %v", err)
		}

		key := storage.ArtifactKey("highlight", workPath, referencePath, "png", time.Now())
		output.HighlightPath, err = s.Put(ctx, key, data)
		if err != nil {
			log.Fatalf("Failed to save highlight image: %v", err)
		}
	}

	if err := json.NewEncoder(os.Stdout).Encode(output); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}
