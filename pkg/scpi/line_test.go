package scpi

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader returns one chunk per Read call, then (0, nil) like a serial
// port whose read timeout expired.
type chunkReader struct {
	chunks []string
	reads  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	r.reads++
	if len(r.chunks) == 0 {
		return 0, nil
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if r.chunks[0] == "" {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestReadLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "newline terminated", input: "12.345\n", want: "12.345"},
		{name: "crlf terminated", input: "0.512\r\n", want: "0.512"},
		{name: "no terminator before EOF", input: "1.000", want: "1.000"},
		{name: "only the first line", input: "1.000\n2.000\n", want: "1.000"},
		{name: "empty line", input: "\n", want: ""},
		{name: "nothing received", input: "", wantErr: ErrNoReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 100)
			got, err := ReadLine(strings.NewReader(tt.input), buf)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadLine_Chunked(t *testing.T) {
	r := &chunkReader{chunks: []string{"12", ".3", "45", "\n"}}
	got, err := ReadLine(r, make([]byte, 100))
	require.NoError(t, err)
	assert.Equal(t, "12.345", got)
	assert.Equal(t, 4, r.reads, "should stop reading at the newline")
}

func TestReadLine_TimeoutMidReply(t *testing.T) {
	r := &chunkReader{chunks: []string{"12.3"}}
	got, err := ReadLine(r, make([]byte, 100))
	require.NoError(t, err)
	assert.Equal(t, "12.3", got)
}

func TestReadLine_BufferFull(t *testing.T) {
	long := strings.Repeat("9", 64) + "\n"
	buf := make([]byte, 8)
	guard := []byte("GUARD")
	backing := append(buf, guard...)

	got, err := ReadLine(strings.NewReader(long), backing[:8])
	require.NoError(t, err)
	assert.Equal(t, "99999999", got)
	assert.Equal(t, "GUARD", string(backing[8:]), "must not write past the buffer")
}

func TestReadLine_ZeroBuffer(t *testing.T) {
	_, err := ReadLine(strings.NewReader("1\n"), nil)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestReadLine_ReadError(t *testing.T) {
	boom := errors.New("device unplugged")
	_, err := ReadLine(failingReader{err: boom}, make([]byte, 16))
	assert.ErrorIs(t, err, boom)
}

func TestReadLine_EOFWithData(t *testing.T) {
	r := io.MultiReader(bytes.NewReader([]byte("5.0")), bytes.NewReader([]byte("00\r\n")))
	got, err := ReadLine(r, make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, "5.000", got)
}

func TestTrimEOL(t *testing.T) {
	assert.Equal(t, "abc", string(trimEOL([]byte("abc\r\n"))))
	assert.Equal(t, "abc", string(trimEOL([]byte("abc\n"))))
	assert.Equal(t, "abc", string(trimEOL([]byte("abc"))))
	assert.Equal(t, "", string(trimEOL([]byte("\n"))))
	assert.Equal(t, "a\nb", string(trimEOL([]byte("a\nb\n"))))
}
