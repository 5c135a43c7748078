// Package token issues and verifies plume's signed bearer tokens.
//
// Two token kinds share one signing scheme: short-lived access tokens and
// long-lived refresh tokens. A "typ" claim discriminates them so that one
// can never be presented as the other. The package also provides the digest
// helper used to store refresh tokens server-side (only their hash is ever
// persisted).
package token
