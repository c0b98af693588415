package routes

import (
	"errors"
	"measure-error/internal/myhttp"
	"measure-error/internal/storage"
	"net/http"
	"os"
	"path"
	"strings"
)

// GetArtifact serves a stored artifact by key. Only keys under Measure/ are
// reachable.
func GetArtifact(storageClient storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("key")
		if !validKey(key) {
			http.NotFound(w, r)
			return
		}

		data, err := storageClient.Get(r.Context(), storageClient.URL(key))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				http.NotFound(w, r)
				return
			}
			myhttp.Logger(r.Context()).Error("failed to get artifact", "key", key, "error", err)
			myhttp.Error(w, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", http.DetectContentType(data))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func validKey(key string) bool {
	return strings.HasPrefix(key, "Measure/") && path.Clean(key) == key && !strings.Contains(key, "\\")
}
