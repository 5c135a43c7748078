package blog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type likeRecord struct {
	PostID    string
	UserID    string
	CreatedAt time.Time
}

// MemoryStore implements Store in memory. It backs tests and the
// database-less run mode.
type MemoryStore struct {
	mu       sync.Mutex
	posts    map[string]Post
	comments map[string]Comment
	likes    []likeRecord
}

// NewMemoryStore creates an empty in-memory blog store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:    make(map[string]Post),
		comments: make(map[string]Comment),
	}
}

func (s *MemoryStore) CreatePost(_ context.Context, p Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts[p.ID] = p
	return nil
}

func (s *MemoryStore) GetPost(_ context.Context, id string) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, ErrPostNotFound
	}
	return p, nil
}

func (s *MemoryStore) ViewPost(_ context.Context, id string) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, ErrPostNotFound
	}
	p.ViewCount++
	s.posts[id] = p
	return p, nil
}

func (s *MemoryStore) ListPosts(_ context.Context, q ListQuery) ([]Post, Pagination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	term := strings.ToLower(q.Q)
	var matched []Post
	for _, p := range s.posts {
		if term == "" ||
			strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Content), term) {
			matched = append(matched, p)
		}
	}

	column, order := q.normalize()
	asc := order == "ASC"
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less bool
		switch column {
		case "view_count":
			if a.ViewCount != b.ViewCount {
				less = a.ViewCount < b.ViewCount
			} else {
				less = a.ID < b.ID
			}
		case "like_count":
			if a.LikeCount != b.LikeCount {
				less = a.LikeCount < b.LikeCount
			} else {
				less = a.ID < b.ID
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				less = a.CreatedAt.Before(b.CreatedAt)
			} else {
				less = a.ID < b.ID
			}
		}
		if asc {
			return less
		}
		return !less
	})

	return pagePosts(matched, q.Page)
}

func (s *MemoryStore) ListPostsByAuthor(_ context.Context, authorID string, page int) ([]Post, Pagination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mine []Post
	for _, p := range s.posts {
		if p.AuthorID != nil && *p.AuthorID == authorID {
			mine = append(mine, p)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].CreatedAt.After(mine[j].CreatedAt)
		}
		return mine[i].ID < mine[j].ID
	})

	return pagePosts(mine, page)
}

func (s *MemoryStore) ListPostsLiked(_ context.Context, userID string, page int) ([]Post, Pagination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mine []likeRecord
	for _, l := range s.likes {
		if l.UserID == userID {
			mine = append(mine, l)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})

	var liked []Post
	for _, l := range mine {
		if p, ok := s.posts[l.PostID]; ok {
			liked = append(liked, p)
		}
	}

	return pagePosts(liked, page)
}

func pagePosts(posts []Post, page int) ([]Post, Pagination, error) {
	offset, limit, pg := pageWindow(len(posts), page)
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end], pg, nil
}

func pageComments(comments []Comment, page int) ([]Comment, Pagination, error) {
	offset, limit, pg := pageWindow(len(comments), page)
	end := offset + limit
	if end > len(comments) {
		end = len(comments)
	}
	return comments[offset:end], pg, nil
}

func (s *MemoryStore) UpdatePost(_ context.Context, id string, title, content *string, now time.Time) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, ErrPostNotFound
	}
	if title != nil {
		p.Title = *title
	}
	if content != nil {
		p.Content = *content
	}
	ts := now
	p.UpdatedAt = &ts
	s.posts[id] = p
	return p, nil
}

func (s *MemoryStore) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	kept := s.likes[:0]
	for _, l := range s.likes {
		if l.PostID != id {
			kept = append(kept, l)
		}
	}
	s.likes = kept
	return nil
}

func (s *MemoryStore) CreateComment(_ context.Context, c Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[c.PostID]
	if !ok {
		return ErrPostNotFound
	}
	p.CommentCount++
	s.posts[c.PostID] = p
	s.comments[c.ID] = c
	return nil
}

func (s *MemoryStore) GetComment(_ context.Context, id string) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, ErrCommentNotFound
	}
	return c, nil
}

func (s *MemoryStore) ListComments(_ context.Context, postID string, page int) ([]Comment, Pagination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return nil, Pagination{}, ErrPostNotFound
	}

	var matched []Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	return pageComments(matched, page)
}

func (s *MemoryStore) ListCommentsByAuthor(_ context.Context, authorID string, page int) ([]Comment, Pagination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mine []Comment
	for _, c := range s.comments {
		if c.AuthorID != nil && *c.AuthorID == authorID {
			mine = append(mine, c)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].CreatedAt.After(mine[j].CreatedAt)
		}
		return mine[i].ID < mine[j].ID
	})

	return pageComments(mine, page)
}

func (s *MemoryStore) UpdateComment(_ context.Context, id, content string, now time.Time) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, ErrCommentNotFound
	}
	c.Content = content
	ts := now
	c.UpdatedAt = &ts
	s.comments[id] = c
	return c, nil
}

func (s *MemoryStore) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return ErrCommentNotFound
	}
	delete(s.comments, id)
	if p, ok := s.posts[c.PostID]; ok && p.CommentCount > 0 {
		p.CommentCount--
		s.posts[c.PostID] = p
	}
	return nil
}

func (s *MemoryStore) AddLike(_ context.Context, postID, userID string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return 0, ErrPostNotFound
	}
	for _, l := range s.likes {
		if l.PostID == postID && l.UserID == userID {
			return 0, ErrAlreadyLiked
		}
	}
	s.likes = append(s.likes, likeRecord{PostID: postID, UserID: userID, CreatedAt: now})
	p.LikeCount++
	s.posts[postID] = p
	return p.LikeCount, nil
}

func (s *MemoryStore) RemoveLike(_ context.Context, postID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, hasPost := s.posts[postID]
	idx := -1
	for i, l := range s.likes {
		if l.PostID == postID && l.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		if !hasPost {
			return 0, ErrPostNotFound
		}
		return 0, ErrNotLiked
	}
	s.likes = append(s.likes[:idx], s.likes[idx+1:]...)
	if hasPost && p.LikeCount > 0 {
		p.LikeCount--
		s.posts[postID] = p
	}
	return p.LikeCount, nil
}

func (s *MemoryStore) LikeStatus(_ context.Context, postID, userID string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return false, 0, ErrPostNotFound
	}
	for _, l := range s.likes {
		if l.PostID == postID && l.UserID == userID {
			return true, p.LikeCount, nil
		}
	}
	return false, p.LikeCount, nil
}
