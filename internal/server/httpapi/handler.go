package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/viewstore/internal/common"
	"github.com/dmitrijs2005/viewstore/internal/server/models"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

func (s *HTTPServer) ping(w http.ResponseWriter, r *http.Request) {
	s.writeOK(w, r, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *HTTPServer) createView(w http.ResponseWriter, r *http.Request) {
	var req models.CreateViewParams
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.views.CreateView(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeOK(w, r, http.StatusCreated, view)
}

func (s *HTTPServer) readView(w http.ResponseWriter, r *http.Request) {
	belongings := false
	if v := r.URL.Query().Get("belongings"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, common.InvalidParams("belongings", "must be a boolean"))
			return
		}
		belongings = b
	}

	view, err := s.views.ReadView(r.Context(), models.QueryViewParams{
		ViewID:         chi.URLParam(r, "id"),
		ReadBelongings: belongings,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeOK(w, r, http.StatusOK, view)
}

// updateView applies a partial update. Keys missing from the body are left
// unchanged; "is_trash": false is an explicit value.
func (s *HTTPServer) updateView(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateViewParams
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.ViewID = chi.URLParam(r, "id")

	if err := s.views.UpdateView(r.Context(), req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeOK(w, r, http.StatusOK, nil)
}

func (s *HTTPServer) deleteView(w http.ResponseWriter, r *http.Request) {
	if err := s.views.DeleteView(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeOK(w, r, http.StatusOK, nil)
}

func (s *HTTPServer) readViewsBelongTo(w http.ResponseWriter, r *http.Request) {
	views, err := s.views.ReadViewsBelongTo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeOK(w, r, http.StatusOK, views)
}

func (s *HTTPServer) thumbnailURL(w http.ResponseWriter, r *http.Request) {
	url, err := s.thumbnails.ThumbnailURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeOK(w, r, http.StatusOK, map[string]string{"url": url})
}

func (s *HTTPServer) thumbnailUploadURL(w http.ResponseWriter, r *http.Request) {
	up, err := s.thumbnails.ThumbnailUploadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeOK(w, r, http.StatusOK, up)
}

// decodeBody reads one JSON object into dst. Malformed bodies are reported
// as a parameter error on "body".
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return common.InvalidParams("body", "empty body")
		case errors.As(err, &maxErr):
			return common.InvalidParams("body", fmt.Sprintf("larger than %d bytes", maxErr.Limit))
		default:
			return common.InvalidParams("body", err.Error())
		}
	}
	if dec.More() {
		return common.InvalidParams("body", "must contain a single JSON object")
	}
	return nil
}
