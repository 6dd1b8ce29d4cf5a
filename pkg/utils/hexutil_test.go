/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: hexutil_test.go
Description: Tests for hex encoding and FNV-1a hashing. Covers round trips,
malformed input rejection, and known hash vectors.
*/

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBytesToHex tests lowercase hex encoding
func TestBytesToHex(t *testing.T) {
	assert.Equal(t, "", BytesToHex(nil))
	assert.Equal(t, "00", BytesToHex([]byte{0x00}))
	assert.Equal(t, "deadbeef", BytesToHex([]byte{0xDE, 0xAD, 0xBE, 0xEF}))
	assert.Equal(t, "0a0b0c", BytesToHex([]byte{0x0A, 0x0B, 0x0C}))
}

// TestHexToBytes tests decoding including uppercase input
func TestHexToBytes(t *testing.T) {
	decoded, err := HexToBytes("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, decoded)

	decoded, err = HexToBytes("DEADBEEF")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, decoded)

	decoded, err = HexToBytes("")
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

// TestHexToBytesRejectsMalformed tests odd length and bad digit errors
func TestHexToBytesRejectsMalformed(t *testing.T) {
	_, err := HexToBytes("abc")
	assert.ErrorIs(t, err, ErrOddLengthHex)

	_, err = HexToBytes("zz")
	assert.Error(t, err)
}

// TestHexRoundTrip tests that encoding then decoding preserves data
func TestHexRoundTrip(t *testing.T) {
	original := []byte{0x00, 0x01, 0x7F, 0x80, 0xFF, 0x41}
	decoded, err := HexToBytes(BytesToHex(original))
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

// TestHashData tests the FNV-1a hash against known vectors
func TestHashData(t *testing.T) {
	// empty input hashes to the offset basis
	assert.Equal(t, uint64(14695981039346656037), HashData(nil))
	assert.Equal(t, uint64(14695981039346656037), HashData([]byte{}))

	// standard FNV-1a 64-bit vector
	assert.Equal(t, uint64(0xaf63dc4c8601ec8c), HashData([]byte("a")))
}

// TestHashDataDeterministic tests that equal inputs hash equally and
// different inputs diverge
func TestHashDataDeterministic(t *testing.T) {
	a := HashData([]byte("corpus entry"))
	b := HashData([]byte("corpus entry"))
	c := HashData([]byte("corpus entrz"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
