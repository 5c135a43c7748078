// Package blog holds the post, comment, and like domain: models, the
// persistence contract, and its Postgres and in-memory implementations.
package blog
