// Package qr renders text, such as a note's trimmed content, as terminal QR
// codes.
package qr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// ErrEmpty is returned when there is nothing to encode
var ErrEmpty = errors.New("qr: empty content")

// Encoder implements note.QREncoder with go-qrcode
type Encoder struct {
	Level qrcode.RecoveryLevel
	// Border keeps the quiet zone around the symbol
	Border bool
}

// NewEncoder returns an encoder using medium error correction
func NewEncoder() *Encoder {
	return &Encoder{Level: qrcode.Medium, Border: true}
}

// Text encodes content and draws it with half-block characters, two module
// rows per line of output
func (e *Encoder) Text(content string) (string, error) {
	if content == "" {
		return "", ErrEmpty
	}
	code, err := qrcode.New(content, e.Level)
	if err != nil {
		return "", fmt.Errorf("qr: %w", err)
	}
	code.DisableBorder = !e.Border
	return render(code.Bitmap()), nil
}

func render(bitmap [][]bool) string {
	var sb strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		top := bitmap[y]
		var bottom []bool
		if y+1 < len(bitmap) {
			bottom = bitmap[y+1]
		}
		for x := range top {
			upper := top[x]
			lower := bottom != nil && bottom[x]
			switch {
			case upper && lower:
				sb.WriteRune('█')
			case upper:
				sb.WriteRune('▀')
			case lower:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		if y+2 < len(bitmap) {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
