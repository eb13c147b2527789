package mapcode

import (
	"fmt"
	"strings"
	"unicode"
)

// symbols is the code alphabet. Vowels are left out so codes never spell words.
const symbols = "0123456789BCDFGHJKLMNPQRSTVWXZ"

const radix = len(symbols)

const (
	groupSeparator     = '.'
	precisionSeparator = '-'
)

// Alphabet is a script mapcode bodies can be written in. Digits are shared;
// the 20 consonants have one letter per script.
type Alphabet int

const (
	Latin Alphabet = iota
	Greek
	Cyrillic
)

var alphabetNames = [...]string{
	Latin:    "latin",
	Greek:    "greek",
	Cyrillic: "cyrillic",
}

// scriptLetters holds the letters for symbols[10:] in each script.
var scriptLetters = [...][radix - 10]rune{
	Latin:    {'B', 'C', 'D', 'F', 'G', 'H', 'J', 'K', 'L', 'M', 'N', 'P', 'Q', 'R', 'S', 'T', 'V', 'W', 'X', 'Z'},
	Greek:    {'Β', 'Γ', 'Δ', 'Φ', 'Ψ', 'Η', 'Θ', 'Κ', 'Λ', 'Μ', 'Ν', 'Π', 'Ω', 'Ρ', 'Σ', 'Τ', 'Υ', 'Ξ', 'Χ', 'Ζ'},
	Cyrillic: {'Б', 'Ц', 'Д', 'Ф', 'Г', 'Ч', 'Й', 'К', 'Л', 'М', 'Н', 'П', 'Щ', 'Р', 'С', 'Т', 'В', 'Ш', 'Х', 'З'},
}

// symbolValues maps every accepted upper-case rune to its value.
var symbolValues = func() map[rune]int {
	m := make(map[rune]int, radix*len(scriptLetters))
	for i, r := range symbols {
		m[r] = i
	}
	for _, letters := range scriptLetters {
		for i, r := range letters {
			m[r] = i + 10
		}
	}
	return m
}()

// ParseAlphabet returns the alphabet with the given name.
func ParseAlphabet(name string) (Alphabet, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a, n := range alphabetNames {
		if n == name {
			return Alphabet(a), nil
		}
	}
	return Latin, fmt.Errorf("mapcode: unknown alphabet %q", name)
}

func (a Alphabet) String() string {
	if a < 0 || int(a) >= len(alphabetNames) {
		return fmt.Sprintf("Alphabet(%d)", int(a))
	}
	return alphabetNames[a]
}

// symbolValue returns the value of one code point of a body, in any script
// and either case.
func symbolValue(r rune) (int, bool) {
	v, ok := symbolValues[unicode.ToUpper(r)]
	return v, ok
}

// transliterate rewrites a Latin body into a.
func (a Alphabet) transliterate(body string) string {
	if a == Latin || a < 0 || int(a) >= len(scriptLetters) {
		return body
	}
	return strings.Map(func(r rune) rune {
		if v, ok := symbolValues[r]; ok && v >= 10 && r < unicode.MaxASCII {
			return scriptLetters[a][v-10]
		}
		return r
	}, body)
}
