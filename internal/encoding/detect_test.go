package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/cardcycle/internal/encoding"
)

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader(t *testing.T) {
	type testCase struct {
		name  string
		input func(t *testing.T) []byte
		want  string
	}

	const text = "Ngày,Mô tả,Số tiền\n2025-04-02,Phở Hòa,85000\n"

	tests := []testCase{
		{
			name:  "UTF8Passthrough",
			input: func(*testing.T) []byte { return []byte(text) },
			want:  text,
		},
		{
			name: "UTF8BOMStripped",
			input: func(*testing.T) []byte {
				return append([]byte{0xEF, 0xBB, 0xBF}, text...)
			},
			want: text,
		},
		{
			name: "UTF16LE",
			input: func(t *testing.T) []byte {
				enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
				b, err := enc.Bytes([]byte(text))
				require.NoError(t, err)

				return b
			},
			want: text,
		},
		{
			name: "Windows1252",
			input: func(*testing.T) []byte {
				// "Café;12,50\n" with é as 0xE9.
				return []byte{'C', 'a', 'f', 0xE9, ';', '1', '2', ',', '5', '0', '\n'}
			},
			want: "Café;12,50\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readAll(t, tt.input(t)))
		})
	}
}

func TestDetect(t *testing.T) {
	assert.Equal(t, "UTF-8", encoding.Detect([]byte("plain ascii")))
	assert.Equal(t, "UTF-16BE", encoding.Detect([]byte{0xFE, 0xFF, 0x00, 'a'}))

	legacy, err := charmap.Windows1258.NewEncoder().Bytes([]byte("Thanh toán"))
	require.NoError(t, err)
	assert.NotEqual(t, "UTF-8", encoding.Detect(legacy))
}
