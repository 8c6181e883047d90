// Package common contains shared constants and sentinel errors used across
// notekeeper components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// MaxNoteContentBytes bounds the size of a note body.
const MaxNoteContentBytes = 1 << 20
