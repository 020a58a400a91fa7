package common

const (
	// AuthorizationHeaderName carries the access token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// TokenScheme is the keyword clients put in front of the token.
	// BearerScheme is accepted as well.
	TokenScheme  = "Token"
	BearerScheme = "Bearer"

	// NonFieldErrorsKey holds validation messages not tied to one field.
	NonFieldErrorsKey = "non_field_errors"
)
