package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound signals that the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate signals that a unique constraint rejected an insert.
var ErrDuplicate = errors.New("record already exists")

// User models the users table. Users are created on first successful
// OAuth login and never hard-deleted.
type User struct {
	// ID is the stable numeric identity.
	ID int64
	// URL is the unique human-readable handle used in profile links.
	URL string
	// Username is the unique display name from the identity provider.
	Username string
	// Email is the unique address the session token is bound to.
	Email string
	// Picture is the profile picture URI.
	Picture string
	// Confirmed records whether the email was verified via the
	// confirmation-link flow.
	Confirmed bool
	// CreatedAt is set by the database on insert.
	CreatedAt time.Time
}

// Tool models the tools table. Tools are deduplicated globally by Link
// and shared by reference across every user that added them.
type Tool struct {
	ID int64
	// Link is the canonical domain, unique across the table.
	Link string
	// Name and Category come from the metadata extractor ("Unknown" when
	// the model could not determine them).
	Name     string
	Category string
	// Logo is the resolved favicon URL.
	Logo string
}

// AudioReview models the audio_reviews table: at most one current review
// per (tool, user) pair, enforced by delete-then-recreate.
type AudioReview struct {
	ID     int64
	ToolID int64
	UserID int64
	// Audio holds the raw payload; queries may omit it since it is large.
	Audio     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewFilter selects reviews by any combination of id, tool, and user.
// Nil fields are not applied.
type ReviewFilter struct {
	ID     *int64
	ToolID *int64
	UserID *int64
}

// Empty reports whether no filter field is set.
func (f ReviewFilter) Empty() bool {
	return f.ID == nil && f.ToolID == nil && f.UserID == nil
}

// Profile is the tagged variant returned for profile queries. Full marks
// whether the viewer is the owner; the caller chooses serialization.
type Profile struct {
	User  User
	Tools []Tool
	Full  bool
}

// UserRepository persists users and their tool associations.
type UserRepository interface {
	// CreateUser inserts a user and returns it with ID and CreatedAt set.
	CreateUser(ctx context.Context, u User) (User, error)
	// UserByID/UserByEmail/UserByURL load a single user or return ErrNotFound.
	UserByID(ctx context.Context, id int64) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByURL(ctx context.Context, url string) (User, error)
	// ConfirmUser flips the confirmed flag.
	ConfirmUser(ctx context.Context, id int64) error

	// ListUserTools returns every tool associated with the user.
	ListUserTools(ctx context.Context, userID int64) ([]Tool, error)
	// AddUserTool associates an existing tool with the user.
	AddUserTool(ctx context.Context, userID, toolID int64) error
	// RemoveUserTool detaches the tool; detaching an unassociated tool is
	// a no-op, not an error.
	RemoveUserTool(ctx context.Context, userID, toolID int64) error
}

// ToolRepository persists globally deduplicated tools.
type ToolRepository interface {
	// CreateTool inserts a tool; a link collision returns ErrDuplicate so
	// callers can fall back to a lookup instead of failing the request.
	CreateTool(ctx context.Context, t Tool) (Tool, error)
	// ToolByID/ToolByLink load a single tool or return ErrNotFound.
	ToolByID(ctx context.Context, id int64) (Tool, error)
	ToolByLink(ctx context.Context, link string) (Tool, error)
}

// ReviewRepository persists audio reviews.
type ReviewRepository interface {
	// CreateReview inserts a review and returns it with ID and timestamps set.
	CreateReview(ctx context.Context, r AudioReview) (AudioReview, error)
	// FindReview returns the first review matching the filter, with the
	// audio payload included only when withAudio is set. No match returns
	// ErrNotFound.
	FindReview(ctx context.Context, f ReviewFilter, withAudio bool) (AudioReview, error)
	// DeleteReview removes a review by id; a missing row returns ErrNotFound.
	DeleteReview(ctx context.Context, id int64) error
}

// Store bundles the repositories the service layer depends on.
type Store interface {
	UserRepository
	ToolRepository
	ReviewRepository
}
