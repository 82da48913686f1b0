package latticeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCounterRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 27, 28, 1000, 999999} {
		enc := EncodeCounter(n)
		dec, err := DecodeCounter(enc)
		require.NoError(t, err)
		assert.Equal(t, n, dec, "round trip for %d via %q", n, enc)
	}
}

func TestFormatAndParse(t *testing.T) {
	id, err := Format("K2X", 2)
	require.NoError(t, err)
	assert.Equal(t, "K2X"+EncodeCounter(2), id)

	parsed, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, "K2X", parsed.ClientID)
	assert.Equal(t, uint64(2), parsed.Counter)
}

func TestValidateClientID(t *testing.T) {
	assert.NoError(t, ValidateClientID("K2X"))
	assert.NoError(t, ValidateClientID("ABCDEF"))
	assert.Error(t, ValidateClientID("AB"))       // too short
	assert.Error(t, ValidateClientID("ABCDEFG"))  // too long
	assert.Error(t, ValidateClientID("K0X"))      // contains excluded '0'
	assert.Error(t, ValidateClientID("k2x"))      // lowercase not accepted
}

func TestFormatRejectsOutOfBoundLength(t *testing.T) {
	_, err := Format("ABCDEF", 0)
	require.NoError(t, err) // 6 + 1 = 7, within bounds

	// A huge counter pushes a 6-char client id past the 10-char total bound.
	_, err = Format("ABCDEF", 1<<40)
	assert.Error(t, err)
}

func TestParseRejectsInvalidCharacters(t *testing.T) {
	_, err := Parse("K2X!")
	assert.Error(t, err)
}

func TestValidReportsBoolean(t *testing.T) {
	id, err := Format("K2X", 2)
	require.NoError(t, err)
	assert.True(t, Valid(id))
	assert.False(t, Valid("!!"))
}

func TestNormalizeClientID(t *testing.T) {
	assert.Equal(t, "K2X", NormalizeClientID("k2x"))
}
