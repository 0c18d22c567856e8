package transcript

import "strings"

var fillerTokens = map[string]struct{}{
	"um": {}, "uh": {}, "erm": {}, "ah": {},
}

var numberWords = map[string]string{
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10",
}

var doseUnits = map[string]string{
	"milligram": "mg", "milligrams": "mg",
	"milliliter": "ml", "milliliters": "ml",
	"millilitre": "ml", "millilitres": "ml",
	"microgram": "mcg", "micrograms": "mcg",
}

// pronounStarters are tokens that usually open a new sentence when they
// appear capitalized after a lowercase word.
var pronounStarters = map[string]struct{}{
	"I": {}, "I'm": {}, "I've": {}, "I'll": {}, "I'd": {},
	"My": {}, "We": {}, "He": {}, "She": {}, "They": {}, "It": {},
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanLocal is the always-available heuristic pass: drop isolated filler
// tokens, repair the punctuation artifacts their removal leaves behind, map
// spoken small numbers to digits and normalize common dose units.
func cleanLocal(s string) string {
	tokens := strings.Fields(s)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		core, trailing := splitTrailingPunct(tok)
		if _, filler := fillerTokens[strings.ToLower(core)]; filler {
			// "I was, um, tired": the filler's trailing punctuation folds
			// into the previous token unless it already carries some.
			if trailing != "" && len(out) > 0 && !endsWithPunct(out[len(out)-1]) {
				out[len(out)-1] += trailing
			}
			continue
		}
		if digit, ok := numberWords[strings.ToLower(core)]; ok {
			out = append(out, digit+trailing)
			continue
		}
		if unit, ok := doseUnits[strings.ToLower(core)]; ok {
			out = append(out, unit+trailing)
			continue
		}
		out = append(out, tok)
	}
	return repairPunctuation(strings.Join(out, " "))
}

func splitTrailingPunct(tok string) (core, trailing string) {
	end := len(tok)
	for end > 0 && isPunct(tok[end-1]) {
		end--
	}
	return tok[:end], tok[end:]
}

func isPunct(c byte) bool {
	switch c {
	case ',', '.', ';', ':', '!', '?':
		return true
	}
	return false
}

func endsWithPunct(tok string) bool {
	return tok != "" && isPunct(tok[len(tok)-1])
}

func repairPunctuation(s string) string {
	for _, pair := range [][2]string{
		{",,", ","}, {",.", "."}, {".,", "."}, {"..", "."},
		{", ,", ","}, {". .", "."}, {", .", "."},
	} {
		for strings.Contains(s, pair[0]) {
			s = strings.ReplaceAll(s, pair[0], pair[1])
		}
	}
	return collapseWhitespace(s)
}

// normalizePunctuation inserts a sentence break before a capitalized pronoun
// that follows a lowercase word, and appends terminal punctuation if missing.
func normalizePunctuation(s string) string {
	tokens := strings.Fields(s)
	for i := 1; i < len(tokens); i++ {
		prev := tokens[i-1]
		if _, ok := pronounStarters[tokens[i]]; !ok {
			continue
		}
		if endsWithLowercaseLetter(prev) {
			tokens[i-1] = prev + "."
		}
	}
	out := strings.Join(tokens, " ")
	if out != "" && !strings.ContainsRune(".!?", rune(out[len(out)-1])) {
		out += "."
	}
	return out
}

func endsWithLowercaseLetter(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[len(tok)-1]
	return c >= 'a' && c <= 'z'
}
