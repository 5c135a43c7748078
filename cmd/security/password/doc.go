// Package password turns plaintext passwords into storable credentials and
// verifies attempts against them.
//
// Hashing is two-stage: an HMAC-SHA256 pre-hash keyed with a server-held
// pepper, then bcrypt over the fixed-length digest. The pre-hash keeps
// arbitrarily long passwords clear of bcrypt's 72-byte input limit, and the
// pepper means a stolen credential table alone is not enough to brute-force
// passwords offline.
package password
