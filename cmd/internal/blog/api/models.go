package blogapi

import (
	"time"

	"plume/cmd/internal/blog"
)

// Field bounds enforced on writes.
const (
	maxTitleLen   = 100
	maxContentLen = 10000
	maxCommentLen = 1000
	maxSearchLen  = 20
	maxPage       = 10000
)

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type createCommentRequest struct {
	Content string `json:"content"`
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

type paginationResponse struct {
	Page  int `json:"page"`
	Total int `json:"total"`
}

type postListItem struct {
	ID           string    `json:"id"`
	AuthorID     *string   `json:"author_id"`
	Title        string    `json:"title"`
	ViewCount    int       `json:"view_count"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type postDetail struct {
	postListItem
	Content   string     `json:"content"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type listPostsResponse struct {
	Data       []postListItem     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type commentResponse struct {
	ID        string     `json:"id"`
	PostID    string     `json:"post_id"`
	AuthorID  *string    `json:"author_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type listCommentsResponse struct {
	Data       []commentResponse  `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type likeStatusResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

func toPostListItem(p blog.Post) postListItem {
	return postListItem{
		ID:           p.ID,
		AuthorID:     p.AuthorID,
		Title:        p.Title,
		ViewCount:    p.ViewCount,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		CreatedAt:    p.CreatedAt,
	}
}

func toPostDetail(p blog.Post) postDetail {
	return postDetail{
		postListItem: toPostListItem(p),
		Content:      p.Content,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toListPostsResponse(posts []blog.Post, pg blog.Pagination) listPostsResponse {
	items := make([]postListItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, toPostListItem(p))
	}
	return listPostsResponse{
		Data:       items,
		Pagination: paginationResponse{Page: pg.Page, Total: pg.Total},
	}
}

func toCommentResponse(c blog.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toListCommentsResponse(comments []blog.Comment, pg blog.Pagination) listCommentsResponse {
	items := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		items = append(items, toCommentResponse(c))
	}
	return listCommentsResponse{
		Data:       items,
		Pagination: paginationResponse{Page: pg.Page, Total: pg.Total},
	}
}
