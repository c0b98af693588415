package runnable

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"log/slog"
	diffimage "measure-error/internal/diff/image"
	"measure-error/internal/storage"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/metric/noop"
)

func newTestHandler(t *testing.T) (http.Handler, storage.Storage) {
	t.Helper()

	t.Setenv("NEIGHBOR_THRESHOLD", "1")
	s, err := storage.NewFileStorage(context.Background(), storage.FileConfig{Directory: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	return NewServer(s).Handler(logger, metrics), s
}

func TestHandler_Healthz(t *testing.T) {
	handler, _ := newTestHandler(t)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if diff := cmp.Diff(http.StatusOK, recorder.Code); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("OK", recorder.Body.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestHandler_Measure(t *testing.T) {
	handler, _ := newTestHandler(t)

	work := image.NewRGBA(image.Rect(0, 0, 2, 2))
	reference := image.NewRGBA(image.Rect(0, 0, 2, 2))
	work.Set(0, 0, color.White)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, img := range map[string]image.Image{"work": work, "reference": reference} {
		data, err := diffimage.EncodePNG(img)
		if err != nil {
			t.Fatal(err)
		}
		w, err := writer.CreateFormFile(field, field+".png")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = w.Write(data)
	}
	_ = writer.Close()

	request := httptest.NewRequest(http.MethodPost, "/measure", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if diff := cmp.Diff(http.StatusOK, recorder.Code); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if !strings.Contains(recorder.Body.String(), `"qualityError":1`) {
		t.Errorf("expected the threshold from NEIGHBOR_THRESHOLD, got %s", recorder.Body.String())
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/measure", nil))

	if diff := cmp.Diff(http.StatusMethodNotAllowed, recorder.Code); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestHandler_Artifact(t *testing.T) {
	handler, s := newTestHandler(t)
	if _, err := s.Put(context.Background(), "Measure/highlight/abc/1.png", []byte("png")); err != nil {
		t.Fatal(err)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/artifacts/Measure/highlight/abc/1.png", nil))

	if diff := cmp.Diff(http.StatusOK, recorder.Code); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("png", recorder.Body.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
