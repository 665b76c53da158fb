package api

import (
	"github.com/starford/postview/internal/dates"
	"github.com/starford/postview/internal/index"
	"github.com/starford/postview/internal/models"
	"github.com/starford/postview/internal/render"
	"github.com/starford/postview/internal/urlenc"
)

// PostListResponse wraps paginated post listings.
type PostListResponse struct {
	Posts []index.PostRow `json:"posts" validate:"required"`
	Total int             `json:"total" example:"42" validate:"required"`
}

// PostDetail is the full post response.
type PostDetail struct {
	Slug           string `json:"slug" example:"hello"`
	Title          string `json:"title" example:"Hello"`
	Date           any    `json:"date,omitempty"`
	Excerpt        string `json:"excerpt"`
	Content        string `json:"content"`
	ImageURL       string `json:"image_url,omitempty"`
	DisplayDate    string `json:"display_date" example:"2024-03-05"`
	ReadingMinutes int    `json:"reading_minutes" example:"3"`
	Fragment       string `json:"fragment" example:"#post/hello"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// CreateSessionRequest is the request body for starting a reader session.
type CreateSessionRequest struct {
	URL string `json:"url" example:"/blog#post/hello"`
}

// OpenRequest is the request body for opening a post in a session.
type OpenRequest struct {
	Slug string `json:"slug" example:"hello" validate:"required"`
}

// ActivateRequest selects the n-th read-more link (0-based).
type ActivateRequest struct {
	Index int `json:"index" example:"0"`
}

// NavigateRequest is the request body for changing the fragment.
type NavigateRequest struct {
	Fragment string `json:"fragment" example:"#post/hello"`
}

func newPostDetail(p *models.Post) PostDetail {
	return PostDetail{
		Slug:           p.Slug,
		Title:          p.Title,
		Date:           p.Date,
		Excerpt:        p.Excerpt,
		Content:        p.Content,
		ImageURL:       p.ImageURL,
		DisplayDate:    dates.Display(p.Date),
		ReadingMinutes: render.ReadingMinutes(p.Content),
		Fragment:       urlenc.PostFragment(p.Slug),
	}
}
