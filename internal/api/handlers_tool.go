package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/appsquad/tooldir/internal/ingest"
	"github.com/appsquad/tooldir/internal/store"
	"github.com/appsquad/tooldir/internal/tool"
)

// maxAudioBytes bounds the multipart review upload kept in memory.
const maxAudioBytes = 32 << 20

func (s *Server) addTool(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req struct {
		Link string `json:"link"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Link == "" {
		s.writeError(w, http.StatusBadRequest, "missing link")
		return
	}

	t, err := s.tools.AddTool(r.Context(), user, req.Link)
	switch {
	case errors.Is(err, tool.ErrToolLimit):
		s.writeError(w, http.StatusUnauthorized, "max tools limit reached")
		return
	case errors.Is(err, tool.ErrAlreadyAdded):
		s.writeError(w, http.StatusBadRequest, "Tool already added")
		return
	case errors.Is(err, ingest.ErrUnreachable):
		s.writeError(w, http.StatusBadRequest, "Couldn't reach domain")
		return
	case errors.Is(err, ingest.ErrContent), errors.Is(err, ingest.ErrCompletion):
		s.writeError(w, http.StatusInternalServerError, "Couldn't retrieve website content")
		return
	case errors.Is(err, ingest.ErrFavicon):
		s.writeError(w, http.StatusInternalServerError, "Couldn't retrieve favicon")
		return
	case err != nil:
		s.logger.Error("add tool failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "an error has occured")
		return
	}

	s.writeJSON(w, http.StatusOK, newToolView(t))
}

func (s *Server) removeTool(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	toolID, err := strconv.ParseInt(chi.URLParam(r, "tool_id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid tool id")
		return
	}
	if err := s.tools.RemoveTool(r.Context(), user, toolID); err != nil {
		s.logger.Error("remove tool failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "an error has occured")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getReview(w http.ResponseWriter, r *http.Request) {
	toolID, err := strconv.ParseInt(chi.URLParam(r, "tool_id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid tool id")
		return
	}
	withAudio := r.URL.Query().Get("data") == "true"

	filter := store.ReviewFilter{ToolID: &toolID}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		filter.UserID = &userID
	}

	review, err := s.tools.GetAudioReview(r.Context(), filter, withAudio)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Review not found")
		return
	case err != nil:
		s.logger.Error("get review failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "an error has occured")
		return
	}

	if withAudio {
		w.Header().Set("Content-Type", "audio/mp3")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(review.Audio); err != nil {
			s.logger.Error("stream audio failed", zap.Error(err))
		}
		return
	}
	s.writeJSON(w, http.StatusOK, newReviewView(review))
}

func (s *Server) uploadReview(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	toolID, err := strconv.ParseInt(chi.URLParam(r, "tool_id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing audio file")
		return
	}
	defer file.Close() //nolint:errcheck // nothing useful to do on close failure

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "couldn't read audio file")
		return
	}

	review, err := s.tools.UpdateAudioReview(r.Context(), user, toolID, audio)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "tool not found")
		return
	case err != nil:
		s.logger.Error("upload review failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "an error has occured")
		return
	}
	s.writeJSON(w, http.StatusOK, newReviewView(review))
}
