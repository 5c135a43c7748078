// Package identity owns user accounts: lookup by email or id, credential
// hash persistence, and profile updates. It deliberately knows nothing
// about tokens or sessions.
package identity
