package bitcoind

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCookie(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".cookie")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCredentials(t *testing.T) {
	conn := &ConnInfo{RPCHost: "127.0.0.1", RPCPort: 18443, CookieFile: writeCookie(t, "__cookie__:s3cret\n")}

	user, pass, err := conn.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "__cookie__", user)
	assert.Equal(t, "s3cret", pass)
}

func TestCredentialsPasswordWithColons(t *testing.T) {
	conn := &ConnInfo{CookieFile: writeCookie(t, "user:pa:ss:wd")}

	user, pass, err := conn.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "user", user)
	assert.Equal(t, "pa:ss:wd", pass)
}

func TestCredentialsMissingFile(t *testing.T) {
	conn := &ConnInfo{CookieFile: filepath.Join(t.TempDir(), "nope")}

	_, _, err := conn.Credentials()
	require.ErrorIs(t, err, ErrMissingAuth)
}

func TestCredentialsMalformed(t *testing.T) {
	for _, content := range []string{"", "justonefield", ":nopassuser"} {
		conn := &ConnInfo{CookieFile: writeCookie(t, content)}
		_, _, err := conn.Credentials()
		assert.ErrorIs(t, err, ErrMissingAuth, "cookie %q", content)
	}
}

func TestAddr(t *testing.T) {
	conn := &ConnInfo{RPCHost: "127.0.0.1", RPCPort: 18443}
	assert.Equal(t, "127.0.0.1:18443", conn.Addr())
}
