package blog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (posts, comments,
// likes). Counters on posts are updated in the same transaction as the
// row change they track.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed blog store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postColumns = `
	id, author_id, title, content,
	view_count, like_count, comment_count,
	created_at, updated_at
`

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.Title,
		&p.Content,
		&p.ViewCount,
		&p.LikeCount,
		&p.CommentCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func collectPosts(rows pgx.Rows) ([]Post, error) {
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CreatePost inserts a new post row.
func (s *PostgresStore) CreatePost(ctx context.Context, p Post) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO posts (
			id, author_id, title, content,
			view_count, like_count, comment_count,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.AuthorID, p.Title, p.Content,
		p.ViewCount, p.LikeCount, p.CommentCount,
		p.CreatedAt, p.UpdatedAt)
	return err
}

// GetPost fetches a post by id.
func (s *PostgresStore) GetPost(ctx context.Context, id string) (Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx, `
		SELECT `+postColumns+` FROM posts WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrPostNotFound
	}
	return p, err
}

// ViewPost bumps the view counter and returns the updated post in one
// statement, so concurrent reads never lose an increment.
func (s *PostgresStore) ViewPost(ctx context.Context, id string) (Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx, `
		UPDATE posts
		SET view_count = view_count + 1
		WHERE id = $1
		RETURNING `+postColumns+`
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrPostNotFound
	}
	return p, err
}

// ListPosts returns a page of posts matching q. The search term is
// matched as a substring of title or content; the sort column comes
// from the fixed allowlist.
func (s *PostgresStore) ListPosts(ctx context.Context, q ListQuery) ([]Post, Pagination, error) {
	pattern := "%" + q.Q + "%"

	var total int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM posts
		WHERE $1 = '' OR title ILIKE $2 OR content ILIKE $2
	`, q.Q, pattern).Scan(&total)
	if err != nil {
		return nil, Pagination{}, err
	}

	offset, limit, pg := pageWindow(total, q.Page)

	column, order := q.normalize()
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT `+postColumns+` FROM posts
		WHERE $1 = '' OR title ILIKE $2 OR content ILIKE $2
		ORDER BY %s %s, id
		LIMIT $3 OFFSET $4
	`, column, order), q.Q, pattern, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}

	posts, err := collectPosts(rows)
	return posts, pg, err
}

// ListPostsByAuthor returns a page of the author's posts, newest first.
func (s *PostgresStore) ListPostsByAuthor(ctx context.Context, authorID string, page int) ([]Post, Pagination, error) {
	var total int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM posts WHERE author_id = $1
	`, authorID).Scan(&total)
	if err != nil {
		return nil, Pagination{}, err
	}

	offset, limit, pg := pageWindow(total, page)

	rows, err := s.pool.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, authorID, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}

	posts, err := collectPosts(rows)
	return posts, pg, err
}

// ListPostsLiked returns a page of posts the user liked, most recent
// like first.
func (s *PostgresStore) ListPostsLiked(ctx context.Context, userID string, page int) ([]Post, Pagination, error) {
	var total int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM likes WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return nil, Pagination{}, err
	}

	offset, limit, pg := pageWindow(total, page)

	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.author_id, p.title, p.content,
		       p.view_count, p.like_count, p.comment_count,
		       p.created_at, p.updated_at
		FROM likes l
		JOIN posts p ON p.id = l.post_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC, p.id
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}

	posts, err := collectPosts(rows)
	return posts, pg, err
}

// UpdatePost applies the non-nil fields and stamps updated_at.
func (s *PostgresStore) UpdatePost(ctx context.Context, id string, title, content *string, now time.Time) (Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx, `
		UPDATE posts
		SET title = COALESCE($2, title),
		    content = COALESCE($3, content),
		    updated_at = $4
		WHERE id = $1
		RETURNING `+postColumns+`
	`, id, title, content, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrPostNotFound
	}
	return p, err
}

// DeletePost removes the post. Comments and likes cascade via the
// schema's foreign keys.
func (s *PostgresStore) DeletePost(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

// CreateComment inserts the comment and bumps the post's comment
// counter in one transaction.
func (s *PostgresStore) CreateComment(ctx context.Context, c Comment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE posts SET comment_count = comment_count + 1 WHERE id = $1
	`, c.PostID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO comments (id, post_id, author_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.PostID, c.AuthorID, c.Content, c.CreatedAt, c.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetComment fetches a comment by id.
func (s *PostgresStore) GetComment(ctx context.Context, id string) (Comment, error) {
	c, err := scanComment(s.pool.QueryRow(ctx, `
		SELECT id, post_id, author_id, content, created_at, updated_at
		FROM comments WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrCommentNotFound
	}
	return c, err
}

// ListComments returns a page of a post's comments, oldest first.
func (s *PostgresStore) ListComments(ctx context.Context, postID string, page int) ([]Comment, Pagination, error) {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, Pagination{}, err
	}

	var total int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM comments WHERE post_id = $1
	`, postID).Scan(&total)
	if err != nil {
		return nil, Pagination{}, err
	}

	offset, limit, pg := pageWindow(total, page)

	rows, err := s.pool.Query(ctx, `
		SELECT id, post_id, author_id, content, created_at, updated_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`, postID, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}

	comments, err := collectComments(rows)
	return comments, pg, err
}

// ListCommentsByAuthor returns a page of the author's comments, newest
// first.
func (s *PostgresStore) ListCommentsByAuthor(ctx context.Context, authorID string, page int) ([]Comment, Pagination, error) {
	var total int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM comments WHERE author_id = $1
	`, authorID).Scan(&total)
	if err != nil {
		return nil, Pagination{}, err
	}

	offset, limit, pg := pageWindow(total, page)

	rows, err := s.pool.Query(ctx, `
		SELECT id, post_id, author_id, content, created_at, updated_at
		FROM comments
		WHERE author_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, authorID, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}

	comments, err := collectComments(rows)
	return comments, pg, err
}

func collectComments(rows pgx.Rows) ([]Comment, error) {
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// UpdateComment replaces the content and stamps updated_at.
func (s *PostgresStore) UpdateComment(ctx context.Context, id, content string, now time.Time) (Comment, error) {
	c, err := scanComment(s.pool.QueryRow(ctx, `
		UPDATE comments
		SET content = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, post_id, author_id, content, created_at, updated_at
	`, id, content, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrCommentNotFound
	}
	return c, err
}

// DeleteComment removes the comment and decrements the post's comment
// counter in one transaction.
func (s *PostgresStore) DeleteComment(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var postID string
	err = tx.QueryRow(ctx, `
		DELETE FROM comments WHERE id = $1 RETURNING post_id
	`, id).Scan(&postID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCommentNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE posts
		SET comment_count = greatest(comment_count - 1, 0)
		WHERE id = $1
	`, postID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// AddLike records the like and bumps the counter in one transaction.
// The likes primary key (post_id, user_id) makes a second like a
// conflict, reported as ErrAlreadyLiked.
func (s *PostgresStore) AddLike(ctx context.Context, postID, userID string, now time.Time) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)
	`, postID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrPostNotFound
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO likes (post_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`, postID, userID, now)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrAlreadyLiked
	}

	var count int
	if err := tx.QueryRow(ctx, `
		UPDATE posts SET like_count = like_count + 1
		WHERE id = $1
		RETURNING like_count
	`, postID).Scan(&count); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return count, nil
}

// RemoveLike deletes the like and decrements the counter in one
// transaction.
func (s *PostgresStore) RemoveLike(ctx context.Context, postID, userID string) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		DELETE FROM likes WHERE post_id = $1 AND user_id = $2
	`, postID, userID)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)
		`, postID).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, ErrPostNotFound
		}
		return 0, ErrNotLiked
	}

	var count int
	if err := tx.QueryRow(ctx, `
		UPDATE posts SET like_count = greatest(like_count - 1, 0)
		WHERE id = $1
		RETURNING like_count
	`, postID).Scan(&count); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return count, nil
}

// LikeStatus reports whether userID liked postID and the current count.
func (s *PostgresStore) LikeStatus(ctx context.Context, postID, userID string) (bool, int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT like_count FROM posts WHERE id = $1
	`, postID).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, 0, ErrPostNotFound
	}
	if err != nil {
		return false, 0, err
	}

	var liked bool
	if err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2)
	`, postID, userID).Scan(&liked); err != nil {
		return false, 0, err
	}
	return liked, count, nil
}
