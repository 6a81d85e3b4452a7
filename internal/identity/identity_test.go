package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
)

func TestStaticDirectory(t *testing.T) {
	dir := identity.NewStaticDirectory(identity.User{ID: 7, Email: "Jane@Corp.com", DisplayName: "Jane"})
	ctx := context.Background()

	u, err := dir.LookupUserByEmail(ctx, "bot@corp.com", "  jane@corp.COM ")
	require.NoError(t, err)
	assert.True(t, u.Known())
	assert.Equal(t, int64(7), u.ID)

	u, err = dir.LookupUserByEmail(ctx, "bot@corp.com", "nobody@corp.com")
	require.NoError(t, err)
	assert.False(t, u.Known())
	assert.Equal(t, "nobody@corp.com", u.Email)

	_, err = dir.LookupUserByEmail(ctx, "", "jane@corp.com")
	assert.ErrorIs(t, err, identity.ErrRequestingUserRequired)
}

func TestLoadStaticDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
users:
  - id: 11
    email: a@b.com
    display_name: Alice
  - id: 12
    email: c@d.com
`), 0o600))

	dir, err := identity.LoadStaticDirectory(path)
	require.NoError(t, err)
	assert.Equal(t, 2, dir.Len())

	u, err := dir.LookupUserByEmail(context.Background(), "bot", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.DisplayName)

	_, err = identity.LoadStaticDirectory(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMentionEntity(t *testing.T) {
	u := &identity.User{ID: 42, Email: "a@b.com", DisplayName: "Alice"}
	m := u.MentionEntity("salesforce")

	assert.Equal(t, "mention", m.Name)
	assert.Equal(t, identity.MentionEntityType, m.Type)
	id, _ := m.Attr("id")
	assert.Equal(t, "42", id)
	integ, _ := m.Attr("integration")
	assert.Equal(t, "salesforce", integ)
	require.NoError(t, m.Validate())
}

func TestHTTPDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pod/v2/user", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("local"))
		if r.Header.Get(identity.RequestingUserHeader) != "bot@corp.com" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("email") {
		case "a@b.com":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "emailAddress": "a@b.com", "displayName": "Alice"})
		case "boom@b.com":
			http.Error(w, "backend down", http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := identity.NewHTTPDirectory(srv.URL+"/", 2*time.Second)
	ctx := context.Background()

	u, err := dir.LookupUserByEmail(ctx, "bot@corp.com", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.Equal(t, "Alice", u.DisplayName)

	u, err = dir.LookupUserByEmail(ctx, "bot@corp.com", "ghost@b.com")
	require.NoError(t, err)
	assert.False(t, u.Known())

	_, err = dir.LookupUserByEmail(ctx, "bot@corp.com", "boom@b.com")
	assert.ErrorContains(t, err, "status 502")

	_, err = dir.LookupUserByEmail(ctx, "intruder", "a@b.com")
	assert.ErrorContains(t, err, "status 401")

	_, err = dir.LookupUserByEmail(ctx, "", "a@b.com")
	assert.ErrorIs(t, err, identity.ErrRequestingUserRequired)
}

type countingDirectory struct {
	calls int
	inner identity.Directory
}

func (c *countingDirectory) LookupUserByEmail(ctx context.Context, requestingUser, email string) (*identity.User, error) {
	c.calls++
	return c.inner.LookupUserByEmail(ctx, requestingUser, email)
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCachedDirectory(t *testing.T) {
	mr, client := setupTestRedis(t)
	next := &countingDirectory{inner: identity.NewStaticDirectory(identity.User{ID: 42, Email: "a@b.com"})}
	dir := identity.NewCachedDirectory(next, client, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		u, err := dir.LookupUserByEmail(ctx, "bot", "A@B.com")
		require.NoError(t, err)
		assert.Equal(t, int64(42), u.ID)
	}
	assert.Equal(t, 1, next.calls)
	assert.True(t, mr.Exists("identity:bot:a@b.com"))

	// Negative results are cached as well.
	for i := 0; i < 2; i++ {
		u, err := dir.LookupUserByEmail(ctx, "bot", "ghost@b.com")
		require.NoError(t, err)
		assert.False(t, u.Known())
	}
	assert.Equal(t, 2, next.calls)

	// Entries are scoped to the requesting user.
	_, err := dir.LookupUserByEmail(ctx, "other-bot", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 3, next.calls)

	mr.FastForward(2 * time.Minute)
	_, err = dir.LookupUserByEmail(ctx, "bot", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 4, next.calls)
}

func TestCachedDirectory_RedisDownFallsThrough(t *testing.T) {
	mr, client := setupTestRedis(t)
	next := &countingDirectory{inner: identity.NewStaticDirectory(identity.User{ID: 42, Email: "a@b.com"})}
	dir := identity.NewCachedDirectory(next, client, time.Minute)
	mr.Close()

	u, err := dir.LookupUserByEmail(context.Background(), "bot", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.Equal(t, 1, next.calls)
}
