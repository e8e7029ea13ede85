package auth

import (
	"context"
	"net/http"
)

// InternalContext carries the caller identity the gateway forwards with
// each internal request. It is built once per request by the auth gate and
// read-only thereafter.
type InternalContext struct {
	UserID         string
	UserEmail      string
	OrganizationID string
	AccountType    string
	RequestID      string
	IsInternal     bool
}

// Identity headers set by the gateway on internal requests.
const (
	HeaderInternalSecret = "X-Internal-Secret"
	HeaderUserID         = "X-User-ID"
	HeaderUserEmail      = "X-User-Email"
	HeaderOrganizationID = "X-Organization-ID"
	HeaderAccountType    = "X-Account-Type"
	HeaderRequestID      = "X-Request-ID"
)

// DefaultAccountType is applied when the account type header is absent.
const DefaultAccountType = "casual"

type contextKey string

const internalContextKey contextKey = "internal_context"

// WithInternalContext stores the internal context on the request context.
func WithInternalContext(ctx context.Context, ic InternalContext) context.Context {
	return context.WithValue(ctx, internalContextKey, ic)
}

// FromContext retrieves the internal context. Requests that did not pass
// through the auth gate get an empty context with IsInternal false.
func FromContext(ctx context.Context) InternalContext {
	if ic, ok := ctx.Value(internalContextKey).(InternalContext); ok {
		return ic
	}
	return InternalContext{AccountType: DefaultAccountType}
}

// contextFromHeaders builds an InternalContext from the identity headers.
func contextFromHeaders(h http.Header) InternalContext {
	accountType := h.Get(HeaderAccountType)
	if accountType == "" {
		accountType = DefaultAccountType
	}
	return InternalContext{
		UserID:         h.Get(HeaderUserID),
		UserEmail:      h.Get(HeaderUserEmail),
		OrganizationID: h.Get(HeaderOrganizationID),
		AccountType:    accountType,
		RequestID:      h.Get(HeaderRequestID),
		IsInternal:     true,
	}
}
