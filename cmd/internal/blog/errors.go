package blog

import "errors"

var (
	// ErrPostNotFound is returned when a post id matches no row.
	ErrPostNotFound = errors.New("blog: post not found")

	// ErrCommentNotFound is returned when a comment id matches no row.
	ErrCommentNotFound = errors.New("blog: comment not found")

	// ErrAlreadyLiked is returned when a user likes a post twice.
	ErrAlreadyLiked = errors.New("blog: already liked")

	// ErrNotLiked is returned when a user unlikes a post they never liked.
	ErrNotLiked = errors.New("blog: like not found")
)
