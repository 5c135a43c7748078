package blog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func seedPost(t *testing.T, s *MemoryStore, author, title string, created time.Time) Post {
	t.Helper()

	p := Post{
		ID:        NewPostID(),
		AuthorID:  strPtr(author),
		Title:     title,
		Content:   "content of " + title,
		CreatedAt: created,
	}
	if err := s.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	return p
}

func TestMemoryStore_ViewPostIncrements(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	p := seedPost(t, s, "u1", "hello", time.Now())

	for i := 1; i <= 3; i++ {
		got, err := s.ViewPost(ctx, p.ID)
		if err != nil {
			t.Fatalf("ViewPost: %v", err)
		}
		if got.ViewCount != i {
			t.Fatalf("view count = %d, want %d", got.ViewCount, i)
		}
	}

	// A plain read does not bump the counter.
	got, err := s.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.ViewCount != 3 {
		t.Fatalf("view count after GetPost = %d, want 3", got.ViewCount)
	}
}

func TestMemoryStore_ListPostsSearchAndSort(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	a := seedPost(t, s, "u1", "go generics", base)
	seedPost(t, s, "u1", "rust traits", base.Add(time.Hour))
	c := seedPost(t, s, "u2", "going further", base.Add(2*time.Hour))

	posts, pg, err := s.ListPosts(ctx, ListQuery{Q: "go", Page: 1})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("matched %d posts, want 2", len(posts))
	}
	// Default order is created_at descending.
	if posts[0].ID != c.ID || posts[1].ID != a.ID {
		t.Fatalf("unexpected order: %s, %s", posts[0].Title, posts[1].Title)
	}
	if pg.Page != 1 || pg.Total != 1 {
		t.Fatalf("pagination = %+v", pg)
	}

	// Sort by view count ascending.
	if _, err := s.ViewPost(ctx, a.ID); err != nil {
		t.Fatalf("ViewPost: %v", err)
	}
	posts, _, err = s.ListPosts(ctx, ListQuery{Sort: SortViewCount, Order: OrderAsc, Page: 1})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if posts[len(posts)-1].ID != a.ID {
		t.Fatalf("most viewed post not last in ascending order")
	}
}

func TestMemoryStore_ListPostsPaging(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < PageSize+5; i++ {
		seedPost(t, s, "u1", fmt.Sprintf("post %02d", i), base.Add(time.Duration(i)*time.Minute))
	}

	first, pg, err := s.ListPosts(ctx, ListQuery{Page: 1})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(first) != PageSize {
		t.Fatalf("page 1 has %d posts, want %d", len(first), PageSize)
	}
	if pg.Total != 2 {
		t.Fatalf("total pages = %d, want 2", pg.Total)
	}

	second, pg, err := s.ListPosts(ctx, ListQuery{Page: 2})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(second) != 5 {
		t.Fatalf("page 2 has %d posts, want 5", len(second))
	}
	if pg.Page != 2 {
		t.Fatalf("page = %d, want 2", pg.Page)
	}

	// Out-of-range pages clamp to the last page.
	clamped, pg, err := s.ListPosts(ctx, ListQuery{Page: 50})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if pg.Page != 2 || len(clamped) != 5 {
		t.Fatalf("clamped page = %+v with %d posts", pg, len(clamped))
	}
}

func TestMemoryStore_UpdatePostPartial(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	p := seedPost(t, s, "u1", "before", time.Now())

	now := time.Now().Add(time.Minute)
	got, err := s.UpdatePost(ctx, p.ID, strPtr("after"), nil, now)
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if got.Title != "after" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.Content != p.Content {
		t.Fatalf("content changed on a title-only update")
	}
	if got.UpdatedAt == nil {
		t.Fatal("updated_at not stamped")
	}

	if _, err := s.UpdatePost(ctx, "missing", strPtr("x"), nil, now); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("err = %v, want ErrPostNotFound", err)
	}
}

func TestMemoryStore_CommentsMaintainCounter(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	p := seedPost(t, s, "u1", "hello", time.Now())

	c := Comment{
		ID:        NewCommentID(),
		PostID:    p.ID,
		AuthorID:  strPtr("u2"),
		Content:   "first",
		CreatedAt: time.Now(),
	}
	if err := s.CreateComment(ctx, c); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	got, err := s.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.CommentCount != 1 {
		t.Fatalf("comment count = %d, want 1", got.CommentCount)
	}

	if err := s.DeleteComment(ctx, c.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	got, _ = s.GetPost(ctx, p.ID)
	if got.CommentCount != 0 {
		t.Fatalf("comment count after delete = %d, want 0", got.CommentCount)
	}

	if err := s.CreateComment(ctx, Comment{ID: NewCommentID(), PostID: "missing"}); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("err = %v, want ErrPostNotFound", err)
	}
}

func TestMemoryStore_Likes(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	p := seedPost(t, s, "u1", "hello", now)

	count, err := s.AddLike(ctx, p.ID, "u2", now)
	if err != nil {
		t.Fatalf("AddLike: %v", err)
	}
	if count != 1 {
		t.Fatalf("like count = %d, want 1", count)
	}

	if _, err := s.AddLike(ctx, p.ID, "u2", now); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("second like err = %v, want ErrAlreadyLiked", err)
	}

	liked, count, err := s.LikeStatus(ctx, p.ID, "u2")
	if err != nil || !liked || count != 1 {
		t.Fatalf("LikeStatus = %v %d %v", liked, count, err)
	}

	count, err = s.RemoveLike(ctx, p.ID, "u2")
	if err != nil {
		t.Fatalf("RemoveLike: %v", err)
	}
	if count != 0 {
		t.Fatalf("like count after remove = %d, want 0", count)
	}

	if _, err := s.RemoveLike(ctx, p.ID, "u2"); !errors.Is(err, ErrNotLiked) {
		t.Fatalf("second remove err = %v, want ErrNotLiked", err)
	}
	if _, err := s.AddLike(ctx, "missing", "u2", now); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("like on missing post err = %v, want ErrPostNotFound", err)
	}
}

func TestMemoryStore_ListPostsLikedOrder(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	a := seedPost(t, s, "u1", "first", base)
	b := seedPost(t, s, "u1", "second", base)

	// Like a before b; the listing is most recent like first.
	if _, err := s.AddLike(ctx, a.ID, "u2", base.Add(time.Minute)); err != nil {
		t.Fatalf("AddLike: %v", err)
	}
	if _, err := s.AddLike(ctx, b.ID, "u2", base.Add(2*time.Minute)); err != nil {
		t.Fatalf("AddLike: %v", err)
	}

	posts, _, err := s.ListPostsLiked(ctx, "u2", 1)
	if err != nil {
		t.Fatalf("ListPostsLiked: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != b.ID || posts[1].ID != a.ID {
		t.Fatalf("unexpected liked order: %+v", posts)
	}
}

func TestMemoryStore_DeletePostCascades(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	p := seedPost(t, s, "u1", "hello", time.Now())

	c := Comment{ID: NewCommentID(), PostID: p.ID, Content: "x", CreatedAt: time.Now()}
	if err := s.CreateComment(ctx, c); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if _, err := s.AddLike(ctx, p.ID, "u2", time.Now()); err != nil {
		t.Fatalf("AddLike: %v", err)
	}

	if err := s.DeletePost(ctx, p.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if _, err := s.GetComment(ctx, c.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("comment survived post delete: %v", err)
	}
	posts, _, err := s.ListPostsLiked(ctx, "u2", 1)
	if err != nil {
		t.Fatalf("ListPostsLiked: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("likes survived post delete")
	}
}
