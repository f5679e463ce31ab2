package common

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEtherToWeiIsExact(t *testing.T) {
	cases := map[string]string{
		"0.1":                  "100000000000000000",
		"1":                    "1000000000000000000",
		"0.000000000000000001": "1",
		" 2.5 ":                "2500000000000000000",
		"123456789.123456789":  "123456789123456789000000000",
	}
	for in, want := range cases {
		got, err := EtherToWei(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
	}
}

func TestEtherToWeiRejects(t *testing.T) {
	tooLarge := "1" + strings.Repeat("0", 60) // 10^60 ether is past 2^256 wei
	for _, in := range []string{
		"", "abc", "-1", "0.0000000000000000001", "1.2.3",
		"1e10000000", "1E3", "2e-1", tooLarge,
	} {
		_, err := EtherToWei(in)
		assert.Error(t, err, in)
	}
}

func TestEtherToWeiMaxUint256(t *testing.T) {
	// 2^256-1 wei, written in ether
	maxWei := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	got, err := EtherToWei(WeiToEther(maxWei))
	require.NoError(t, err)
	assert.Equal(t, 0, maxWei.Cmp(got))

	_, err = EtherToWei(WeiToEther(new(big.Int).Add(maxWei, big.NewInt(1))))
	assert.Error(t, err)
}

func TestWeiToEther(t *testing.T) {
	assert.Equal(t, "0.0", WeiToEther(big.NewInt(0)))
	assert.Equal(t, "0.0", WeiToEther(nil))
	assert.Equal(t, "0.1", WeiToEther(big.NewInt(100000000000000000)))
	assert.Equal(t, "1.0", WeiToEther(big.NewInt(1000000000000000000)))
	assert.Equal(t, "0.000000000000000001", WeiToEther(big.NewInt(1)))

	wei, ok := new(big.Int).SetString("1234500000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, "1.2345", WeiToEther(wei))
}
