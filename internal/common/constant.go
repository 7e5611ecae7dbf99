// Package common contains shared constants, sentinel errors and small helpers
// used across SecureDoc components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// UncategorizedBucket is the group name used for documents without a category.
const UncategorizedBucket = "Uncategorized"
