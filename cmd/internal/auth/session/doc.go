// Package session implements the server-side session lifecycle behind
// plume's refresh tokens.
//
// Each session row binds exactly one outstanding refresh token (by hash)
// to a user. Refresh is strict rotate-on-use: the stored hash is replaced
// atomically on every successful refresh, so a rotated-away token that is
// presented again matches no row, and that missing row is the
// reuse/theft signal.
package session
