package secure

import (
	"fmt"
	"unicode/utf8"

	"github.com/awnumar/memguard"
)

// DefaultCharset is used when no charset is configured
const DefaultCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MaxLength bounds generated secrets (SSM standard parameters hold 4 KB)
const MaxLength = 4096

// maxCharset is the number of distinct characters a single random byte can select
const maxCharset = 256

// RandomString returns length characters drawn uniformly from charset using
// crypto/rand. Characters are runes, so multi-byte charsets produce valid
// UTF-8. Intermediate material never leaves locked memory.
func RandomString(length int, charset string) (string, error) {
	if length <= 0 || length > MaxLength {
		return "", fmt.Errorf("secret length must be between 1 and %d, got %d", MaxLength, length)
	}
	if charset == "" {
		charset = DefaultCharset
	}
	if !utf8.ValidString(charset) {
		return "", fmt.Errorf("charset is not valid UTF-8")
	}
	runes := []rune(charset)
	if len(runes) > maxCharset {
		return "", fmt.Errorf("charset must not exceed %d characters, got %d", maxCharset, len(runes))
	}

	out := memguard.NewBuffer(length * utf8.UTFMax)
	defer out.Destroy()

	// Bytes at or above the largest multiple of len(runes) are discarded so
	// every character is equally likely.
	limit := maxCharset - (maxCharset % len(runes))
	filled, n := 0, 0
	for filled < length {
		chunk := memguard.NewBufferRandom(length - filled + 16)
		for _, b := range chunk.Bytes() {
			if int(b) >= limit {
				continue
			}
			n += utf8.EncodeRune(out.Bytes()[n:], runes[int(b)%len(runes)])
			filled++
			if filled == length {
				break
			}
		}
		chunk.Destroy()
	}

	return string(out.Bytes()[:n]), nil
}
