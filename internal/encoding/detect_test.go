package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/dermanow/dermanow/internal/encoding"
)

const sample = "Nama Barang;Kuantiti;Harga Seunit\nBeras Siam 10kg;10;28,50\nCafé crème;2;5,00\n"

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestDetect_UTF8Passthrough(t *testing.T) {
	r, charset, err := encoding.Detect(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, encoding.UTF8, charset)
	assert.Equal(t, sample, readAll(t, r))
}

func TestDetect_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, sample...)

	r, charset, err := encoding.Detect(bytes.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, encoding.UTF8BOM, charset)
	assert.Equal(t, sample, readAll(t, r))
}

func TestDetect_UTF16LE(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	input, err := enc.Bytes([]byte(sample))
	require.NoError(t, err)

	r, charset, err := encoding.Detect(bytes.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, encoding.UTF16LE, charset)
	assert.Equal(t, sample, readAll(t, r))
}

func TestDetect_Windows1252(t *testing.T) {
	input, err := charmap.Windows1252.NewEncoder().Bytes([]byte("Barang;Harga\nCafé crème;5,00\n"))
	require.NoError(t, err)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "Barang;Harga\nCafé crème;5,00\n", readAll(t, r))
}

func TestDetect_Empty(t *testing.T) {
	r, charset, err := encoding.Detect(strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, encoding.UTF8, charset)
	assert.Empty(t, readAll(t, r))
}

func TestDetect_RuneSplitAtSniffBoundary(t *testing.T) {
	input := strings.Repeat("a", 4095) + "é\n"

	r, charset, err := encoding.Detect(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, encoding.UTF8, charset)
	assert.Equal(t, input, readAll(t, r))
}
