package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlexZinkM/eth-wallet/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersXML = `<users>
  <user>
    <username>fun</username>
    <password>fun</password>
    <wallets>
      <wallet>
        <name>UTC--2024-04-11T23-40-09.892441000Z--ea2d2e276033772f09311e0ce64dde5f2f329c17.json</name>
        <password>fun</password>
      </wallet>
    </wallets>
  </user>
  <user>
    <username>fun2</username>
    <password>fun2</password>
    <wallets/>
  </user>
</users>`

func openRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Open(registry.BackendFile, filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestImportUsers(t *testing.T) {
	reg := openRegistry(t)
	require.NoError(t, reg.Register("fun2", []byte("already-here")))

	var out bytes.Buffer
	require.NoError(t, importUsers(&out, reg, strings.NewReader(usersXML), t.TempDir(), false))

	assert.Contains(t, out.String(), "parsed 2 users with 1 wallets")
	assert.Contains(t, out.String(), "dropped 1 stored wallet passwords")
	assert.Contains(t, out.String(), "imported (1): fun")
	assert.Contains(t, out.String(), "already registered, left unchanged (1): fun2")

	require.NoError(t, reg.Authenticate("fun", []byte("fun")))
	require.NoError(t, reg.Authenticate("fun2", []byte("already-here")))
	assert.Len(t, reg.ListWallets("fun"), 1)
}

func TestImportUsersDryRun(t *testing.T) {
	reg := openRegistry(t)

	var out bytes.Buffer
	require.NoError(t, importUsers(&out, reg, strings.NewReader(usersXML), "", true))

	assert.Contains(t, out.String(), "fun (1 wallets): new")
	assert.False(t, reg.Exists("fun"))
}
