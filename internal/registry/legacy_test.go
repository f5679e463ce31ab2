package registry

import (
	"strings"
	"testing"

	"github.com/AlexZinkM/eth-wallet/internal/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const legacyXML = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<users>
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
    <wallets>
      <wallet>
        <name>UTC--2024-04-12T10-00-00.000000000Z--2c7536e3605d9c16a7a3d7b1898e529396a65c23.json</name>
      </wallet>
      <wallet>
        <name>wallet.json</name>
      </wallet>
    </wallets>
  </user>
  <user>
    <username>fun</username>
    <password>dup</password>
    <wallets/>
  </user>
</users>`

func TestImportXMLBothSchemas(t *testing.T) {
	assert := assert.New(t)

	records, report, err := ImportXML(strings.NewReader(legacyXML), LegacyOptions{CredentialCost: bcrypt.MinCost})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(2, report.Users)
	assert.Equal(2, report.Wallets)
	assert.Equal(1, report.DroppedWalletPasswords)
	assert.Equal([]string{"fun"}, report.SkippedUsers)
	assert.Equal([]string{"fun2/wallet.json"}, report.SkippedWallets)

	fun := records[0]
	assert.Equal("fun", fun.Username)
	assert.True(crypto.VerifyCredential(fun.Credential, []byte("fun")))
	require.Len(t, fun.Wallets, 1)
	assert.Equal("0xEa2D2E276033772f09311E0Ce64ddE5f2F329C17", fun.Wallets[0].Address)
	assert.Equal(2024, fun.Wallets[0].CreatedAt.Year())

	fun2 := records[1]
	assert.True(crypto.VerifyCredential(fun2.Credential, []byte("fun2")))
	require.Len(t, fun2.Wallets, 1)
	assert.Equal("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", fun2.Wallets[0].Address)
}

func TestImportXMLLongPassword(t *testing.T) {
	long := strings.Repeat("x", 80)
	doc := `<users>
  <user><username>a</username><password>short</password><wallets/></user>
  <user><username>b</username><password>` + long + `</password><wallets/></user>
</users>`

	records, report, err := ImportXML(strings.NewReader(doc), LegacyOptions{CredentialCost: bcrypt.MinCost})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, report.Users)
	assert.True(t, crypto.VerifyCredential(records[1].Credential, []byte(long)))
}

func TestImportXMLRejectsGarbage(t *testing.T) {
	_, _, err := ImportXML(strings.NewReader("<users><user>"), LegacyOptions{CredentialCost: bcrypt.MinCost})
	assert.Error(t, err)
}

func TestRegistryImportSkipsExisting(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry(t, newFileStore(t))
	require.NoError(t, r.Register("fun", []byte("kept")))

	records, _, err := ImportXML(strings.NewReader(legacyXML), LegacyOptions{CredentialCost: bcrypt.MinCost})
	require.NoError(t, err)

	report, err := r.Import(records)
	require.NoError(t, err)
	assert.Equal([]string{"fun2"}, report.Imported)
	assert.Equal([]string{"fun"}, report.Skipped)

	assert.NoError(r.Authenticate("fun", []byte("kept")))
	assert.NoError(r.Authenticate("fun2", []byte("fun2")))
	assert.Len(r.ListWallets("fun2"), 1)
	assert.Empty(r.ListWallets("fun"))
}
