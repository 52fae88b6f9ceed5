package winthor

import (
	"context"
	"fmt"
	"net/http"
)

const maxAttempts = 2

// Response is the outcome of one protected ERP call.
type Response struct {
	Status int
	Body   []byte
}

// Call performs one protected request with the given bearer token.
type Call func(ctx context.Context, token string) (*Response, error)

// TokenProvider is the token side of the retry protocol.
type TokenProvider interface {
	Token(ctx context.Context, tenantID int64) (string, error)
	InvalidateToken(ctx context.Context, tenantID int64) error
}

func authRejected(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// WithAuthRetry runs call with the tenant's token. On 401/403 it drops the
// token, authenticates again and repeats the call once. The second answer is
// returned as is; errors from call (including timeouts) are never retried.
func WithAuthRetry(ctx context.Context, tokens TokenProvider, tenantID int64, call Call) (*Response, error) {
	var resp *Response
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		token, err := tokens.Token(ctx, tenantID)
		if err != nil {
			if attempt > 1 {
				return nil, fmt.Errorf("re-authenticate: %w", err)
			}
			return nil, err
		}

		resp, err = call(ctx, token)
		if err != nil {
			return nil, err
		}
		if !authRejected(resp.Status) || attempt == maxAttempts {
			return resp, nil
		}

		if err := tokens.InvalidateToken(ctx, tenantID); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
