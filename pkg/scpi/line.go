package scpi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ReadLine reads a reply into buf until a newline arrives, the reader
// reports EOF or a timeout (a zero-byte read), or buf is full. It never
// writes past len(buf). The trailing "\n" or "\r\n" is removed.
//
// Bytes received after the newline within the same read are discarded;
// queries are strictly request/response so nothing else is pending.
func ReadLine(r io.Reader, buf []byte) (string, error) {
	if len(buf) == 0 {
		return "", ErrBufferTooSmall
	}

	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		if m > 0 {
			if idx := bytes.IndexByte(buf[n:n+m], '\n'); idx >= 0 {
				n += idx + 1
				break
			}
			n += m
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("read: %w", err)
		}
		if m == 0 {
			// Serial read timeout
			break
		}
	}

	if n == 0 {
		return "", ErrNoReply
	}

	return string(trimEOL(buf[:n])), nil
}

// trimEOL drops one trailing "\n" and any "\r" before it.
func trimEOL(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\n' {
		b = b[:len(b)-1]
	}
	for len(b) > 0 && b[len(b)-1] == '\r' {
		b = b[:len(b)-1]
	}
	return b
}
