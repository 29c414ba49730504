package qsteg

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Bit is a single binary digit.
type Bit uint8

const (
	Zero Bit = 0
	One  Bit = 1
)

/*
BitSequence is an ordered run of binary digits. Methods never modify the
receiver, a sequence stays as it was produced.
*/
type BitSequence []Bit

/*
EncodeText turns text into a BitSequence, eight bits per character, most
significant bit first. Characters above 255 cannot be represented in a byte
and fail with ErrInput rather than being silently truncated.
*/
func EncodeText(text string) (BitSequence, error) {
	bits, _, err := encodeText(text, -1)
	return bits, err
}

/*
EncodeTextPrefix validates all of text but only expands the characters needed
to cover the first n bits. It also returns the bit length of the whole text.
*/
func EncodeTextPrefix(text string, n int) (BitSequence, int, error) {
	if n <= 0 {
		return nil, 0, errors.Wrapf(ErrInvalidInput, "bit limit must be positive, got %d", n)
	}

	bits, total, err := encodeText(text, n)
	if err != nil {
		return nil, 0, err
	}

	return bits[:min(n, len(bits))], total, nil
}

// encodeText expands characters until limit bits are held; a negative limit
// expands everything.
func encodeText(text string, limit int) (BitSequence, int, error) {
	capacity := 8 * len(text)
	if limit >= 0 {
		capacity = min(capacity, limit+7)
	}

	bits := make(BitSequence, 0, capacity)
	total := 0

	for pos, r := range text {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(text[pos:]); size <= 1 {
				return nil, 0, errors.Wrapf(ErrInput, "invalid UTF-8 at byte %d", pos)
			}
		}

		if r > 0xff {
			return nil, 0, errors.Wrapf(
				ErrInput, "character %q at byte %d is outside the 8-bit range", r, pos,
			)
		}

		total += 8
		if limit >= 0 && len(bits) >= limit {
			continue
		}

		for shift := 7; shift >= 0; shift-- {
			bits = append(bits, Bit((r>>uint(shift))&1))
		}
	}

	return bits, total, nil
}

/*
ParseBits reads a string of '0' and '1' characters back into a BitSequence.
*/
func ParseBits(s string) (BitSequence, error) {
	bits := make(BitSequence, 0, len(s))

	for i, c := range s {
		switch c {
		case '0':
			bits = append(bits, Zero)
		case '1':
			bits = append(bits, One)
		default:
			return nil, errors.Wrapf(ErrInput, "bit string has %q at position %d", c, i)
		}
	}

	return bits, nil
}

/*
Truncate returns at most the first n bits. The remainder is dropped, which
bounds the size of the simulated state. n must be positive.
*/
func (bs BitSequence) Truncate(n int) (BitSequence, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "bit limit must be positive, got %d", n)
	}

	if n > len(bs) {
		n = len(bs)
	}

	out := make(BitSequence, n)
	copy(out, bs[:n])
	return out, nil
}

// Ones counts the set bits.
func (bs BitSequence) Ones() int {
	count := 0
	for _, b := range bs {
		if b == One {
			count++
		}
	}
	return count
}

func (bs BitSequence) String() string {
	var sb strings.Builder
	sb.Grow(len(bs))
	for _, b := range bs {
		if b == One {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
