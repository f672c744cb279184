package enums

// SecurityEventType labels events recorded by the security middleware.
type SecurityEventType string

const (
	SecurityEventLoginFailed  SecurityEventType = "login_failed"
	SecurityEventAccessDenied SecurityEventType = "access_denied"
	SecurityEventRateLimited  SecurityEventType = "rate_limited"
	SecurityEventTokenInvalid SecurityEventType = "token_invalid"
)

var validSecurityEventTypes = []SecurityEventType{
	SecurityEventLoginFailed,
	SecurityEventAccessDenied,
	SecurityEventRateLimited,
	SecurityEventTokenInvalid,
}

// IsValid reports whether the value is a known SecurityEventType.
func (s SecurityEventType) IsValid() bool {
	for _, candidate := range validSecurityEventTypes {
		if candidate == s {
			return true
		}
	}
	return false
}
