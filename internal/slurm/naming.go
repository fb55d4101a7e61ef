package slurm

import (
	"strings"
	"unicode"
)

// ExternalName converts an internal snake_case field name to the
// capitalised form the tools use: each underscore separated part gets an
// upper case first letter and the parts are concatenated ("grp_tres_mins"
// -> "GrpTresMins"). A part starting with a digit keeps its letters lower
// case ("max_2x" -> "Max2x"), so InternalName can split it off again.
func ExternalName(internal string) string {
	var sb strings.Builder
	for _, part := range strings.Split(internal, "_") {
		sb.WriteString(titleWord(part))
	}
	return sb.String()
}

// InternalName converts a tool field name to snake_case by inserting an
// underscore wherever a lower case letter or digit is followed by an upper
// case letter, or a letter by a digit, then lower casing everything
// ("ParentID" -> "parent_id", "Max2x" -> "max_2x").
func InternalName(external string) string {
	runes := []rune(external)
	var sb strings.Builder
	sb.Grow(len(external) + 4)
	for i, r := range runes {
		if i > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
				sb.WriteByte('_')
			case unicode.IsDigit(r) && unicode.IsLetter(prev):
				sb.WriteByte('_')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// titleWord upper cases the first rune of word and lower cases the rest:
// "tres" becomes "Tres" and "2X" becomes "2x".
func titleWord(word string) string {
	var sb strings.Builder
	for i, r := range word {
		if i == 0 {
			sb.WriteRune(unicode.ToUpper(r))
			continue
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}
