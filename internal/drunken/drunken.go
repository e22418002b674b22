// Package drunken garbles text the way a drunk typist would: dropped and
// doubled characters, fat-fingered neighbor keys, random shouting.
package drunken

import (
	"math/rand/v2"
	"strings"
	"unicode"
)

// DefaultFactor is the pass-through probability used when callers give no
// factor. Counter-intuitively, factor is the chance a character survives
// untouched: 1.0 leaves the text unchanged, 0.0 corrupts every character.
const DefaultFactor = 0.9

// keyboardRows models a QWERTY layout for neighbor-key typos. All rows
// are exactly ten keys wide.
var keyboardRows = [3]string{
	"qwertyuiop",
	"asdfghjkl;",
	"zxcvbnm,./",
}

// source is the randomness drunkenify consumes. Tests inject a seeded
// *rand.Rand; production uses the package-level math/rand/v2 functions.
type source interface {
	Float64() float64
	IntN(n int) int
}

// globalSource adapts the top-level math/rand/v2 functions, which are
// safe for concurrent use.
type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }
func (globalSource) IntN(n int) int   { return rand.IntN(n) }

// Drunkenify rewrites text character by character. Each character
// survives with probability factor; otherwise it is dropped, doubled,
// replaced by a neighboring key, uppercased, or stuttered.
func Drunkenify(text string, factor float64) string {
	return drunkenify(text, factor, globalSource{})
}

func drunkenify(text string, factor float64, rng source) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, ch := range text {
		if rng.Float64() <= factor {
			b.WriteRune(ch)
			continue
		}

		r := rng.Float64()

		if ch == ' ' {
			if r <= 0.5 {
				continue // swallowed
			}
			b.WriteString("  ")
			continue
		}

		switch {
		case r < 0.05:
			// swallowed
		case r < 0.4:
			b.WriteRune(neighboringKey(ch, rng))
		case r < 0.8:
			b.WriteRune(unicode.ToUpper(ch))
		default:
			b.WriteString(strings.Repeat(string(ch), randInt(rng, 0, 4)))
		}
	}

	return b.String()
}

// randInt returns a uniform random integer in [min, max] inclusive.
func randInt(rng source, min, max int) int {
	return min + rng.IntN(max-min+1)
}

// neighboringKey returns a key adjacent to ch on the QWERTY grid
// (possibly ch itself), preserving case. Characters not on the grid come
// back unchanged.
func neighboringKey(ch rune, rng source) rune {
	isUpper := unicode.IsUpper(ch)
	lower := unicode.ToLower(ch)

	row, col := -1, -1
	for ri, keys := range keyboardRows {
		if i := strings.IndexRune(keys, lower); i >= 0 {
			row, col = ri, i
		}
	}
	if row == -1 {
		return ch
	}

	rowMin, rowMax := -1, 1
	if row == 0 {
		rowMin = 0
	}
	if row == len(keyboardRows)-1 {
		rowMax = 0
	}

	colMin, colMax := -1, 1
	if col == 0 {
		colMin = 0
	}
	if col == len(keyboardRows[0])-1 {
		colMax = 0
	}

	key := rune(keyboardRows[row+randInt(rng, rowMin, rowMax)][col+randInt(rng, colMin, colMax)])
	if isUpper {
		return unicode.ToUpper(key)
	}
	return key
}
