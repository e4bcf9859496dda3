package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	s, err := MakeRandHexString(24)
	require.NoError(t, err)
	assert.Len(t, s, 48)

	_, err = hex.DecodeString(s)
	assert.NoError(t, err, "must be valid hex")

	other, err := MakeRandHexString(24)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestGenerateRandByteArray(t *testing.T) {
	b := GenerateRandByteArray(16)
	require.Len(t, b, 16)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("hunter22")
	WipeByteArray(buf)
	for i, v := range buf {
		assert.Zerof(t, v, "byte %d not wiped", i)
	}

	WipeByteArray(nil)
}
