// Package shortvec implements the compact-u16 length prefix used by the
// transaction wire format.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// maxEncodedLen is the number of bytes needed to encode math.MaxUint16.
const maxEncodedLen = 3

var ErrLenTooLarge = errors.Errorf("len exceeds %d", math.MaxUint16)

// EncodeLen writes len to w, seven bits per byte with the high bit marking
// continuation. It returns the number of bytes written.
func EncodeLen(w io.Writer, len int) (int, error) {
	if len < 0 || len > math.MaxUint16 {
		return 0, ErrLenTooLarge
	}

	var encoded [maxEncodedLen]byte
	n := 0
	for {
		encoded[n] = byte(len & 0x7f)
		len >>= 7
		if len == 0 {
			n++
			break
		}
		encoded[n] |= 0x80
		n++
	}

	return w.Write(encoded[:n])
}

// DecodeLen reads a length written by EncodeLen.
func DecodeLen(r io.Reader) (int, error) {
	var val int
	var b [1]byte

	for i := 0; ; i++ {
		if i == maxEncodedLen {
			return 0, errors.Errorf("invalid size: %d (max %d)", i+1, maxEncodedLen)
		}

		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		val |= int(b[0]&0x7f) << (i * 7)
		if b[0]&0x80 == 0 {
			return val, nil
		}
	}
}
