package api

import (
	"time"

	"github.com/appsquad/tooldir/internal/store"
)

// toolView is the public representation of a tool.
type toolView struct {
	ID       int64  `json:"id"`
	Link     string `json:"link"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Logo     string `json:"logo"`
}

func newToolView(t store.Tool) toolView {
	return toolView{
		ID:       t.ID,
		Link:     t.Link,
		Name:     t.Name,
		Category: t.Category,
		Logo:     t.Logo,
	}
}

func newToolViews(tools []store.Tool) []toolView {
	views := make([]toolView, 0, len(tools))
	for _, t := range tools {
		views = append(views, newToolView(t))
	}
	return views
}

// fullUserView is what the profile owner sees about themselves.
type fullUserView struct {
	ID        int64      `json:"id"`
	URL       string     `json:"url"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Picture   string     `json:"picture"`
	Confirmed bool       `json:"confirmed"`
	CreatedAt time.Time  `json:"created_at"`
	Tools     []toolView `json:"tools"`
}

// privateUserView is what everyone else sees: no email, no timestamps.
type privateUserView struct {
	ID       int64      `json:"id"`
	URL      string     `json:"url"`
	Username string     `json:"username"`
	Picture  string     `json:"picture"`
	Tools    []toolView `json:"tools"`
}

// renderProfile serializes the tagged profile variant the query returned.
func renderProfile(p store.Profile) any {
	if p.Full {
		return fullUserView{
			ID:        p.User.ID,
			URL:       p.User.URL,
			Username:  p.User.Username,
			Email:     p.User.Email,
			Picture:   p.User.Picture,
			Confirmed: p.User.Confirmed,
			CreatedAt: p.User.CreatedAt,
			Tools:     newToolViews(p.Tools),
		}
	}
	return privateUserView{
		ID:       p.User.ID,
		URL:      p.User.URL,
		Username: p.User.Username,
		Picture:  p.User.Picture,
		Tools:    newToolViews(p.Tools),
	}
}

// reviewView is the audio review without its payload; the binary is
// only streamed when explicitly requested.
type reviewView struct {
	ID        int64     `json:"id"`
	ToolID    int64     `json:"tool_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newReviewView(r store.AudioReview) reviewView {
	return reviewView{
		ID:        r.ID,
		ToolID:    r.ToolID,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
