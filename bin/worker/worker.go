package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	diffimage "measure-error/internal/diff/image"
	"measure-error/internal/retry"
	"measure-error/internal/storage"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

type WorkerOutput struct {
	WorkURL      string  `json:"workURL"`
	ReferenceURL string  `json:"referenceURL"`
	HighlightURL string  `json:"highlightURL"`
	ReportURL    string  `json:"reportURL"`
	TotalError   int     `json:"totalError"`
	QualityError int     `json:"qualityError"`
	DiffAmount   float64 `json:"diffAmount"`
}

type Worker struct {
	Storage   storage.Storage
	Threshold int
	Now       func() time.Time
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Worker) process(ctx context.Context, work string, reference string) (*WorkerOutput, error) {
	var workData []byte
	var referenceData []byte

	// Step 1: Fetch both images in parallel
	{
		eg, ctx := errgroup.WithContext(ctx)

		eg.Go(func() error {
			data, err := w.Storage.Get(ctx, work)
			if err != nil {
				return xerrors.Errorf("failed to fetch work image: %w", err)
			}
			workData = data
			return nil
		})

		eg.Go(func() error {
			data, err := w.Storage.Get(ctx, reference)
			if err != nil {
				return xerrors.Errorf("failed to fetch reference image: %w", err)
			}
			referenceData = data
			return nil
		})

		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	// Step 2: Measure
	workImage, err := diffimage.Decode(workData)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode work image: %w", err)
	}
	referenceImage, err := diffimage.Decode(referenceData)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode reference image: %w", err)
	}

	result, err := diffimage.NewQualityDiff(w.Threshold).Calculate(referenceImage, workImage)
	if err != nil {
		return nil, xerrors.Errorf("failed to measure: %w", err)
	}

	highlight, err := diffimage.EncodePNG(result.Image)
	if err != nil {
		return nil, err
	}
	report, err := json.Marshal(result.Report)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal report: %w", err)
	}

	// Step 3: Upload highlight and report in parallel
	output := &WorkerOutput{
		WorkURL:      work,
		ReferenceURL: reference,
		TotalError:   result.TotalErrors,
		QualityError: result.QualityErrors,
		DiffAmount:   result.DiffAmount,
	}
	{
		eg, ctx := errgroup.WithContext(ctx)
		now := w.now()

		eg.Go(func() error {
			url, err := w.Storage.Put(ctx, storage.ArtifactKey("highlight", work, reference, "png", now), highlight)
			if err != nil {
				return xerrors.Errorf("failed to upload highlight: %w", err)
			}
			output.HighlightURL = url
			return nil
		})

		eg.Go(func() error {
			url, err := w.Storage.Put(ctx, storage.ArtifactKey("report", work, reference, "json", now), report)
			if err != nil {
				return xerrors.Errorf("failed to upload report: %w", err)
			}
			output.ReportURL = url
			return nil
		})

		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	slog.InfoContext(ctx, "measured",
		"work", work,
		"reference", reference,
		"totalError", output.TotalError,
		"qualityError", output.QualityError,
	)

	return output, nil
}

func newCallbackClient() *http.Client {
	return &http.Client{
		Timeout: 1 * time.Second, // retry.Transport does not have perTryTimeout
		Transport: &retry.Transport{
			Base:    http.DefaultTransport,
			Backoff: retry.NewExponential(10*time.Millisecond, 1*time.Second, 3, nil),
			Policy:  retry.DefaultPolicy(),
		},
	}
}

func callback(ctx context.Context, client *http.Client, callbackURL string, data []byte) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPatch, callbackURL, bytes.NewReader(data))
	if err != nil {
		return xerrors.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.Do(request)
	if err != nil {
		return xerrors.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		return xerrors.Errorf("callback responded %s", response.Status)
	}
	return nil
}
