// Package authclient calls the auth service's verification endpoint on
// behalf of the shop service. The auth service is the only authority on who
// a caller is; this client never inspects tokens itself.
package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"shop_system/internal/apperr"
	"shop_system/internal/domain"
)

// VerifyPath is the auth service route answering "who is this bearer".
const VerifyPath = "/auth/verify"

// RequestIDHeader is forwarded so both services log the same id.
const RequestIDHeader = "X-Request-ID"

// RoleClaim is the role attached to a shopkeeper's identity.
type RoleClaim struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	ShopID uint   `json:"shop_id"`
}

// Identity is the caller as described by the auth service.
type Identity struct {
	ID       uint            `json:"id"`
	Username string          `json:"username"`
	UserType domain.UserType `json:"user_type"`
	Role     *RoleClaim      `json:"role,omitempty"`
}

// HasType reports whether the identity is one of types.
func (i *Identity) HasType(types ...domain.UserType) bool {
	for _, t := range types {
		if i.UserType == t {
			return true
		}
	}
	return false
}

// UpstreamError carries a verification response with status >= 400 so it
// can be relayed to the original caller unchanged.
type UpstreamError struct {
	Status      int
	ContentType string
	Body        []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("auth service responded %d: %s", e.Status, strings.TrimSpace(string(e.Body)))
}

// Verifier resolves an Authorization header to an identity.
type Verifier interface {
	Verify(ctx context.Context, authorization string) (*Identity, error)
}

// Client talks to the auth service over HTTP. It sets no timeout and never
// retries: every privileged shop request pays exactly one round trip.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for host, given as host:port or as a full base URL.
// A nil httpClient means http.DefaultClient.
func New(host string, httpClient *http.Client) *Client {
	base := strings.TrimRight(host, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: base, http: httpClient}
}

// VerifyURL is the absolute URL of the verification endpoint.
func (c *Client) VerifyURL() string {
	return c.baseURL + VerifyPath
}

// Verify forwards authorization to the auth service. It returns
// *UpstreamError for any status >= 400, an apperr ServiceUnavailable when the
// service cannot be reached, and apperr KindUpstream for an unreadable body.
func (c *Client) Verify(ctx context.Context, authorization string) (*Identity, error) {
	_, body, err := c.Fetch(ctx, authorization)
	if err != nil {
		return nil, err
	}
	var id Identity
	if err := json.Unmarshal(body, &id); err != nil || id.ID == 0 {
		if err == nil {
			err = fmt.Errorf("identity without id: %s", body)
		}
		return nil, apperr.Wrap(apperr.KindUpstream, "Invalid response from auth service", err)
	}
	return &id, nil
}

// Fetch performs the verification call and returns the raw successful
// response so it can be passed through as-is.
func (c *Client) Fetch(ctx context.Context, authorization string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.VerifyURL(), nil)
	if err != nil {
		return "", nil, apperr.Internal("Failed to build verification request", err)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok && rid != "" {
		req.Header.Set(RequestIDHeader, rid)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, apperr.ServiceUnavailable("Auth service unavailable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, apperr.ServiceUnavailable("Auth service unavailable", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode >= http.StatusBadRequest {
		return "", nil, &UpstreamError{Status: resp.StatusCode, ContentType: contentType, Body: body}
	}
	return contentType, body, nil
}

type requestIDKey struct{}

// WithRequestID stores a request id to forward on outgoing calls.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
