package monitor_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/northmart/storefront/internal/monitor"
)

func TestFileCredentialStore(t *testing.T) {
	store := monitor.NewFileCredentialStore(filepath.Join(t.TempDir(), "nested", "admin_token"))

	// A missing file means "not logged in", not an error.
	token, err := store.Token()
	assert.NoError(t, err)
	assert.Empty(t, token)

	assert.NoError(t, store.Save("tok-123\n"))

	token, err = store.Token()
	assert.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	assert.NoError(t, store.Clear())

	token, err = store.Token()
	assert.NoError(t, err)
	assert.Empty(t, token)

	// Clearing an already-empty store is a no-op.
	assert.NoError(t, store.Clear())
}
