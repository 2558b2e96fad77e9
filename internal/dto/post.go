package dto

import (
	"time"

	"github.com/cardfeed/backend/internal/models"
)

// CreatePostRequest for authoring a post
type CreatePostRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category" binding:"required"`
	Image    string `json:"image" binding:"omitempty,url"`
}

// UpdatePostRequest for editing a post; omitted fields are unchanged
type UpdatePostRequest struct {
	Title    *string `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Content  *string `json:"content,omitempty" binding:"omitempty,min=1"`
	Category *string `json:"category,omitempty"`
	Image    *string `json:"image,omitempty" binding:"omitempty,url"`
}

// CommentRequest for appending a comment
type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID        string               `json:"id"`
	Author    models.AuthorSummary `json:"author"`
	Text      string               `json:"text"`
	CreatedAt time.Time            `json:"created_at"`
}

// PostResponse is the client view of a post
type PostResponse struct {
	ID        string               `json:"id"`
	Slug      string               `json:"slug"`
	Title     string               `json:"title"`
	Content   string               `json:"content"`
	Excerpt   string               `json:"excerpt"`
	Category  string               `json:"category"`
	Author    models.AuthorSummary `json:"author"`
	Image     string               `json:"image"`
	Likes     int                  `json:"likes"`
	LikedBy   []string             `json:"liked_by"`
	Shares    int                  `json:"shares"`
	Comments  []CommentResponse    `json:"comments"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// PostSummaryResponse is the feed card view; content and comments are omitted
type PostSummaryResponse struct {
	ID           string               `json:"id"`
	Slug         string               `json:"slug"`
	Title        string               `json:"title"`
	Excerpt      string               `json:"excerpt"`
	Category     string               `json:"category"`
	Author       models.AuthorSummary `json:"author"`
	Image        string               `json:"image"`
	Likes        int                  `json:"likes"`
	LikedBy      []string             `json:"liked_by"`
	Shares       int                  `json:"shares"`
	CommentCount int                  `json:"comment_count"`
	CreatedAt    time.Time            `json:"created_at"`
}

// LikeResponse reports the state after a toggle
type LikeResponse struct {
	Liked bool          `json:"liked"`
	Likes int           `json:"likes"`
	Post  *PostResponse `json:"post"`
}

// CategoryResponse pairs a category with its post count
type CategoryResponse struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

func ToPostResponse(post *models.Post) *PostResponse {
	if post == nil {
		return nil
	}
	likedBy := post.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}
	comments := make([]CommentResponse, 0, len(post.Comments))
	for _, c := range post.Comments {
		comments = append(comments, CommentResponse{
			ID:        c.ID,
			Author:    c.Author,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return &PostResponse{
		ID:        post.ID,
		Slug:      post.Slug,
		Title:     post.Title,
		Content:   post.Content,
		Excerpt:   post.Excerpt,
		Category:  post.Category,
		Author:    post.Author,
		Image:     post.Image,
		Likes:     post.Likes,
		LikedBy:   likedBy,
		Shares:    post.Shares,
		Comments:  comments,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

func ToPostSummaries(posts []*models.Post) []*PostSummaryResponse {
	out := make([]*PostSummaryResponse, 0, len(posts))
	for _, p := range posts {
		likedBy := p.LikedBy
		if likedBy == nil {
			likedBy = []string{}
		}
		out = append(out, &PostSummaryResponse{
			ID:           p.ID,
			Slug:         p.Slug,
			Title:        p.Title,
			Excerpt:      p.Excerpt,
			Category:     p.Category,
			Author:       p.Author,
			Image:        p.Image,
			Likes:        p.Likes,
			LikedBy:      likedBy,
			Shares:       p.Shares,
			CommentCount: len(p.Comments),
			CreatedAt:    p.CreatedAt,
		})
	}
	return out
}
