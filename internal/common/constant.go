// Package common contains shared constants and sentinel errors used across
// recipekeeper components.
package common

// AuthorizationHeaderName is the HTTP header carrying the API token.
const AuthorizationHeaderName = "Authorization"

// TokenKeyword is the scheme prefix expected in the Authorization header,
// e.g. "Token 9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b".
const TokenKeyword = "Token"

// BearerKeyword is accepted as an alias of TokenKeyword.
const BearerKeyword = "Bearer"

// MinPasswordLength is the shortest password accepted from API clients.
const MinPasswordLength = 8

// MaxEmailLength bounds the stored email address, in characters.
const MaxEmailLength = 255
