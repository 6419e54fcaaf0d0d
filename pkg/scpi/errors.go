package scpi

import "errors"

var (
	ErrNotConnected     = errors.New("scpi: not connected")
	ErrAlreadyConnected = errors.New("scpi: already connected")
	ErrInvalidParams    = errors.New("scpi: invalid serial parameters")
	ErrNoReply          = errors.New("scpi: no reply from instrument")
	ErrBufferTooSmall   = errors.New("scpi: reply buffer too small")
)
