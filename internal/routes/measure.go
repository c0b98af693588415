package routes

import (
	"encoding/base64"
	"errors"
	"io"
	diffimage "measure-error/internal/diff/image"
	"measure-error/internal/measure"
	"measure-error/internal/myhttp"
	"measure-error/internal/storage"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/metric"
)

type MeasureResponse struct {
	TotalError    int     `json:"totalError"`
	QualityError  int     `json:"qualityError"`
	DiffAmount    float64 `json:"diffAmount"`
	HighlightURL  string  `json:"highlightURL,omitempty"`
	HighlightData string  `json:"highlightData,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MeasureConfig struct {
	Storage storage.Storage
	// Threshold applies when the request has no threshold field.
	Threshold     int
	QualityErrors metric.Int64Histogram
	Now           func() time.Time
}

// Measure compares the multipart files work and reference. The highlight
// image is returned inline as base64 PNG unless store=true, in which case it
// is uploaded and its URL returned instead.
func Measure(c MeasureConfig) http.HandlerFunc {
	now := c.Now
	if now == nil {
		now = time.Now
	}

	return func(w http.ResponseWriter, r *http.Request) {
		logger := myhttp.Logger(r.Context())

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			myhttp.Error(w, http.StatusBadRequest)
			return
		}

		threshold := c.Threshold
		if v := r.FormValue("threshold"); v != "" {
			t, err := strconv.Atoi(v)
			if err != nil {
				myhttp.WriteJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: "threshold must be an integer"})
				return
			}
			threshold = t
		}
		store := r.FormValue("store") == "true"

		workData, workName, err := readFormFile(r, "work")
		if err != nil {
			myhttp.Error(w, http.StatusBadRequest)
			return
		}
		referenceData, referenceName, err := readFormFile(r, "reference")
		if err != nil {
			myhttp.Error(w, http.StatusBadRequest)
			return
		}

		work, err := diffimage.Decode(workData)
		if err != nil {
			myhttp.WriteJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		reference, err := diffimage.Decode(referenceData)
		if err != nil {
			myhttp.WriteJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		result, err := diffimage.NewQualityDiff(threshold).Calculate(reference, work)
		if err != nil {
			if errors.Is(err, measure.ErrSizeMismatch) {
				myhttp.WriteJSON(w, r, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
				return
			}
			logger.Error("failed to measure", "error", err)
			myhttp.Error(w, http.StatusInternalServerError)
			return
		}

		if c.QualityErrors != nil {
			c.QualityErrors.Record(r.Context(), int64(result.QualityErrors))
		}

		highlight, err := diffimage.EncodePNG(result.Image)
		if err != nil {
			logger.Error("failed to encode highlight", "error", err)
			myhttp.Error(w, http.StatusInternalServerError)
			return
		}

		response := MeasureResponse{
			TotalError:   result.TotalErrors,
			QualityError: result.QualityErrors,
			DiffAmount:   result.DiffAmount,
		}
		if store {
			key := storage.ArtifactKey("highlight", workName, referenceName, "png", now())
			url, err := c.Storage.Put(r.Context(), key, highlight)
			if err != nil {
				logger.Error("failed to store highlight", "error", err)
				myhttp.Error(w, http.StatusInternalServerError)
				return
			}
			response.HighlightURL = url
		} else {
			response.HighlightData = base64.StdEncoding.EncodeToString(highlight)
		}

		logger.Info("measured",
			"work", workName,
			"reference", referenceName,
			"threshold", threshold,
			"totalError", result.TotalErrors,
			"qualityError", result.QualityErrors,
		)
		myhttp.WriteJSON(w, r, http.StatusOK, response)
	}
}

func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}
