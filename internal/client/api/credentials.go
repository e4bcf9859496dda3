package api

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/voxgate/voxgate/internal/common"
)

// wipeBody clears an encoded credential body once the request is sent.
var wipeBody = common.WipeByteArray

const hexDigits = "0123456789abcdef"

// credentialBody encodes fields plus a "password" member as a JSON object.
// The password is escaped straight into the output so it never becomes an
// immutable string; the caller owns both buffers and wipes them.
func credentialBody(fields map[string]string, password []byte) ([]byte, error) {
	head, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	head = head[:len(head)-1] // drop '}'

	// Sized for the worst case so append never leaves a stale copy behind.
	out := make([]byte, 0, len(head)+len(`,"password":""}`)+6*len(password))
	out = append(out, head...)
	if len(fields) > 0 {
		out = append(out, ',')
	}
	out = append(out, `"password":"`...)
	for i := 0; i < len(password); {
		c := password[i]
		switch {
		case c == '"' || c == '\\':
			out = append(out, '\\', c)
			i++
		case c < 0x20:
			out = append(out, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			i++
		case c < utf8.RuneSelf:
			out = append(out, c)
			i++
		default:
			r, size := utf8.DecodeRune(password[i:])
			if r == utf8.RuneError && size == 1 {
				out = append(out, "\ufffd"...)
			} else {
				out = append(out, password[i:i+size]...)
			}
			i += size
		}
	}
	return append(out, '"', '}'), nil
}
