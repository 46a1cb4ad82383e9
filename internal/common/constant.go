// Package common contains shared constants and sentinel errors used across
// FieldLog components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the operator
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// LegacyDeploymentName is the display name given to deployments synthesized
// from inspection history when no canonical record exists.
const LegacyDeploymentName = "Legacy Records"
