// Package tool orchestrates tool registration and audio review
// management on top of the store and the ingestion pipeline.
package tool

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/appsquad/tooldir/internal/ingest"
	"github.com/appsquad/tooldir/internal/store"
)

var (
	// ErrToolLimit rejects an add once the user holds the configured
	// maximum number of tools.
	ErrToolLimit = errors.New("max tools limit reached")
	// ErrAlreadyAdded rejects re-adding a domain the user already has.
	ErrAlreadyAdded = errors.New("tool already added")
)

// Service implements the tool operations exposed over HTTP.
type Service struct {
	store    store.Store
	pipeline ingest.Runner
	maxTools int
	logger   *zap.Logger
}

// NewService builds a Service. maxTools caps associations per user.
func NewService(st store.Store, pipeline ingest.Runner, maxTools int, logger *zap.Logger) *Service {
	return &Service{
		store:    st,
		pipeline: pipeline,
		maxTools: maxTools,
		logger:   logger,
	}
}

// AddTool registers the linked tool for the user, creating the shared
// tool record on first sight of the domain. Any pipeline failure aborts
// the add with nothing persisted; the association is only written after
// the tool row exists.
func (s *Service) AddTool(ctx context.Context, user store.User, link string) (store.Tool, error) {
	owned, err := s.store.ListUserTools(ctx, user.ID)
	if err != nil {
		return store.Tool{}, fmt.Errorf("list user tools: %w", err)
	}
	if len(owned) >= s.maxTools {
		return store.Tool{}, ErrToolLimit
	}

	domain := ingest.NormalizeDomain(link)
	for _, t := range owned {
		if t.Link == domain {
			return store.Tool{}, ErrAlreadyAdded
		}
	}

	t, err := s.store.ToolByLink(ctx, domain)
	switch {
	case errors.Is(err, store.ErrNotFound):
		t, err = s.createTool(ctx, domain)
		if err != nil {
			return store.Tool{}, err
		}
	case err != nil:
		return store.Tool{}, fmt.Errorf("lookup tool: %w", err)
	}

	if err := s.store.AddUserTool(ctx, user.ID, t.ID); err != nil {
		return store.Tool{}, fmt.Errorf("associate tool: %w", err)
	}

	s.logger.Info("tool added",
		zap.Int64("user_id", user.ID),
		zap.Int64("tool_id", t.ID),
		zap.String("domain", domain),
	)
	return t, nil
}

// createTool runs the ingestion pipeline and persists the result. A
// duplicate-link conflict means a concurrent request created the row
// between our lookup and insert; the existing row wins and is re-read.
func (s *Service) createTool(ctx context.Context, domain string) (store.Tool, error) {
	info, err := s.pipeline.Run(ctx, domain)
	if err != nil {
		return store.Tool{}, err
	}

	t, err := s.store.CreateTool(ctx, store.Tool{
		Link:     info.Domain,
		Name:     info.Name,
		Category: info.Category,
		Logo:     info.Logo,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return s.store.ToolByLink(ctx, domain)
	}
	if err != nil {
		return store.Tool{}, fmt.Errorf("create tool: %w", err)
	}
	return t, nil
}

// RemoveTool detaches the tool from the user. There is no existence or
// ownership check: detaching a tool the user never had is a no-op
// success, matching the lenient delete semantics of the API.
func (s *Service) RemoveTool(ctx context.Context, user store.User, toolID int64) error {
	if err := s.store.RemoveUserTool(ctx, user.ID, toolID); err != nil {
		return fmt.Errorf("detach tool: %w", err)
	}
	return nil
}

// UpdateAudioReview replaces the user's review for the tool: the prior
// review, if any, is deleted before the new one is created, keeping at
// most one review per (tool, user) pair.
func (s *Service) UpdateAudioReview(ctx context.Context, user store.User, toolID int64, audio []byte) (store.AudioReview, error) {
	if _, err := s.store.ToolByID(ctx, toolID); err != nil {
		return store.AudioReview{}, fmt.Errorf("lookup tool: %w", err)
	}

	prior, err := s.store.FindReview(ctx, store.ReviewFilter{ToolID: &toolID, UserID: &user.ID}, false)
	switch {
	case err == nil:
		if err := s.store.DeleteReview(ctx, prior.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return store.AudioReview{}, fmt.Errorf("delete prior review: %w", err)
		}
	case errors.Is(err, store.ErrNotFound):
		// No prior review is the expected first-upload state.
	default:
		return store.AudioReview{}, fmt.Errorf("lookup prior review: %w", err)
	}

	review, err := s.store.CreateReview(ctx, store.AudioReview{
		ToolID: toolID,
		UserID: user.ID,
		Audio:  audio,
	})
	if err != nil {
		return store.AudioReview{}, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

// GetAudioReview returns the first review matching the filter.
func (s *Service) GetAudioReview(ctx context.Context, f store.ReviewFilter, withAudio bool) (store.AudioReview, error) {
	if f.Empty() {
		return store.AudioReview{}, fmt.Errorf("at least one of id, tool_id, user_id is required")
	}
	return s.store.FindReview(ctx, f, withAudio)
}
