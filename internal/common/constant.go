package common

const (
	// AuthorizationHeaderName carries "Bearer <session token>" on HTTP requests
	// and the equivalent gRPC metadata key.
	AuthorizationHeaderName = "Authorization"

	// APIKeyHeaderName carries a long-lived account API key.
	APIKeyHeaderName = "X-API-Key"

	// BearerPrefix precedes the session token in the authorization header.
	BearerPrefix = "Bearer "
)
