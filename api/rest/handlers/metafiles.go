package handlers

import (
	"errors"
	"io/fs"
	"net/http"

	"sweep-runner/core/spec"
)

// MetafileHandler serves model-collection metadata
type MetafileHandler struct {
	dir string
}

// NewMetafileHandler creates a new metafile handler
func NewMetafileHandler(dir string) *MetafileHandler {
	return &MetafileHandler{dir: dir}
}

// ListMetafiles handles GET /v1/metafiles
func (h *MetafileHandler) ListMetafiles(w http.ResponseWriter, r *http.Request) {
	collections, err := spec.LoadMetafiles(h.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "No metafiles configured", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load metafiles: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, collections)
}
