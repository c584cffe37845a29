package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMask(t *testing.T) {
	m, err := ParseMask("110011")
	require.NoError(t, err)
	assert.Equal(t, Mask{true, true, false, false, true, true}, m)
	assert.Equal(t, "110011", m.String())
}

func TestParseMask_Invalid(t *testing.T) {
	for _, s := range []string{"", "11001", "1100111", "11002a", "abcdef", " 11001", "１10011"} {
		t.Run(s, func(t *testing.T) {
			_, err := ParseMask(s)
			require.ErrorIs(t, err, ErrInvalidMask)
		})
	}
}

func TestParseMask_RoundTripsAllMasks(t *testing.T) {
	for i := 0; i < 1<<MaskSize; i++ {
		var s []byte
		for bit := MaskSize - 1; bit >= 0; bit-- {
			if i&(1<<bit) != 0 {
				s = append(s, '1')
			} else {
				s = append(s, '0')
			}
		}
		m, err := ParseMask(string(s))
		require.NoError(t, err)
		assert.Equal(t, string(s), m.String())
	}
}

func TestMask_Any(t *testing.T) {
	m := Mask{true, true, false, false, false, false}
	assert.True(t, m.Any(0))
	assert.False(t, m.Any(ToggleGeneAliasExample))

	m[ToggleBlastAlignmentExample] = true
	assert.True(t, m.Any(ToggleGeneAliasExample))
}

func TestMask_LegendAndTranslation(t *testing.T) {
	m, err := ParseMask("100001")
	require.NoError(t, err)

	legend := m.Legend()
	assert.Len(t, legend, MaskSize)
	assert.Equal(t, "Eutils instructions", legend["0"])
	assert.Equal(t, "BLAST alignment example", legend["5"])

	tr := m.Translation()
	assert.True(t, tr["Eutils instructions"])
	assert.False(t, tr["BLAST instructions"])
	assert.True(t, tr["BLAST alignment example"])
}
