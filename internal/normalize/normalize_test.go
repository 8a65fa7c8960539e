package normalize

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForms(t *testing.T) {
	assert.Equal(t, "caf\u00e9", NFC.String("cafe\u0301"))
	assert.Equal(t, "caf\u00e9", NFKC.String("cafe\u0301"))
	assert.Equal(t, "\u00c5", NFC.String("A\u030a"))

	// compatibility ligature only folds under NFKC
	assert.Equal(t, "\ufb01", NFC.String("\ufb01"))
	assert.Equal(t, "fi", NFKC.String("\ufb01"))
}

func TestReaderMatchesString(t *testing.T) {
	in := strings.Repeat("café ﬁne Å ", 200)

	for _, f := range []Form{NFC, NFKC} {
		r := f.Reader(iotest.OneByteReader(strings.NewReader(in)))
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, f.String(in), string(got))
	}
}

func TestByName(t *testing.T) {
	f, ok := ByName("nfc")
	require.True(t, ok)
	assert.Equal(t, NFC, f)

	f, ok = ByName("NFKC")
	require.True(t, ok)
	assert.Equal(t, NFKC, f)

	_, ok = ByName("nfd")
	assert.False(t, ok)
}
