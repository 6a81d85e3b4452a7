package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RequestingUserHeader carries the contextual service identity on lookups.
const RequestingUserHeader = "X-Requesting-User"

// HTTPDirectory looks users up through the pod user API.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDirectory creates a directory client. A zero timeout leaves the
// request bound only by the caller's context.
func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// LookupUserByEmail asks the pod on behalf of requestingUser.
func (d *HTTPDirectory) LookupUserByEmail(ctx context.Context, requestingUser, email string) (*User, error) {
	if requestingUser == "" {
		return nil, ErrRequestingUserRequired
	}
	q := url.Values{}
	q.Set("email", email)
	q.Set("local", "true")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/pod/v2/user?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build user lookup: %w", err)
	}
	req.Header.Set(RequestingUserHeader, requestingUser)
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return notFound(email), nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("user lookup: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if u.Email == "" {
		u.Email = email
	}
	return &u, nil
}
