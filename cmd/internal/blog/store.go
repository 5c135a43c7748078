package blog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Post is a blog post. AuthorID is nil when the author account was
// deleted; the post itself survives.
type Post struct {
	ID           string
	AuthorID     *string
	Title        string
	Content      string
	ViewCount    int
	LikeCount    int
	CommentCount int
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Comment is a comment on a post. AuthorID is nil when the author
// account was deleted.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  *string
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Sort columns accepted by ListPosts. Anything else falls back to
// SortCreatedAt.
const (
	SortCreatedAt = "created_at"
	SortViewCount = "view_count"
	SortLikeCount = "like_count"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListQuery filters and orders the public post listing.
type ListQuery struct {
	// Q is a substring matched against title and content. Empty means
	// no filter.
	Q     string
	Sort  string
	Order string
	Page  int
}

// sortColumns maps accepted sort keys to the literal column names used
// in SQL. Only values from this map ever reach a query string.
var sortColumns = map[string]string{
	SortCreatedAt: "created_at",
	SortViewCount: "view_count",
	SortLikeCount: "like_count",
}

// normalize resolves the query against the allowlist and returns the
// safe column name and order keyword.
func (q ListQuery) normalize() (column, order string) {
	column, ok := sortColumns[q.Sort]
	if !ok {
		column = "created_at"
	}
	order = "DESC"
	if q.Order == OrderAsc {
		order = "ASC"
	}
	return column, order
}

// Store is the persistence contract for posts, comments, and likes.
// Like and comment counters on posts are maintained by the store
// together with the row change.
type Store interface {
	CreatePost(ctx context.Context, p Post) error

	// GetPost fetches a post without touching its view count.
	GetPost(ctx context.Context, id string) (Post, error)

	// ViewPost fetches a post and increments its view count in the
	// same operation.
	ViewPost(ctx context.Context, id string) (Post, error)

	ListPosts(ctx context.Context, q ListQuery) ([]Post, Pagination, error)
	ListPostsByAuthor(ctx context.Context, authorID string, page int) ([]Post, Pagination, error)

	// ListPostsLiked returns posts the user liked, most recent like
	// first.
	ListPostsLiked(ctx context.Context, userID string, page int) ([]Post, Pagination, error)

	// UpdatePost applies the non-nil fields and stamps updated_at.
	UpdatePost(ctx context.Context, id string, title, content *string, now time.Time) (Post, error)
	DeletePost(ctx context.Context, id string) error

	CreateComment(ctx context.Context, c Comment) error
	GetComment(ctx context.Context, id string) (Comment, error)
	ListComments(ctx context.Context, postID string, page int) ([]Comment, Pagination, error)
	ListCommentsByAuthor(ctx context.Context, authorID string, page int) ([]Comment, Pagination, error)
	UpdateComment(ctx context.Context, id, content string, now time.Time) (Comment, error)
	DeleteComment(ctx context.Context, id string) error

	// AddLike records a like and returns the new like count.
	AddLike(ctx context.Context, postID, userID string, now time.Time) (int, error)

	// RemoveLike deletes a like and returns the new like count.
	RemoveLike(ctx context.Context, postID, userID string) (int, error)

	// LikeStatus reports whether the user liked the post and the
	// current like count.
	LikeStatus(ctx context.Context, postID, userID string) (bool, int, error)
}

// NewPostID returns a fresh post id.
func NewPostID() string {
	return uuid.NewString()
}

// NewCommentID returns a fresh comment id.
func NewCommentID() string {
	return uuid.NewString()
}
