package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRange(t *testing.T) {
	title, first, last, err := splitRange("Sayfa1!A:N")
	require.NoError(t, err)
	assert.Equal(t, "Sayfa1", title)
	assert.Equal(t, "A", first)
	assert.Equal(t, "N", last)
	assert.Equal(t, "Sayfa1!A7:N7", rowRange(title, first, last, 7))

	title, first, last, err = splitRange("'İlan Listesi'!A1:N")
	require.NoError(t, err)
	assert.Equal(t, "'İlan Listesi'", title)
	assert.Equal(t, "A", first)
	assert.Equal(t, "N", last)

	for _, bad := range []string{"", "A:N", "Sayfa1!", "Sayfa1!A"} {
		_, _, _, err := splitRange(bad)
		assert.Error(t, err, bad)
	}
}
