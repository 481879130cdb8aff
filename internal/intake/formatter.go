package intake

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yoockh/voiceintake/internal/models"
)

const placeholder = "-"

// Format renders the accepted values as a human readable summary.
func Format(accepted map[models.Field]string, l Locale) string {
	lines := make([]string, 0, len(models.Fields))
	for _, f := range models.Fields {
		v := strings.TrimSpace(accepted[f])
		switch {
		case v == "":
			v = placeholder
		case f.NameLike():
			v = capitalize(v)
		}
		lines = append(lines, string(f)+": "+v)
	}
	return l.SummaryHeader + "\n\n" + strings.Join(lines, "\n")
}

// capitalize upper-cases the first rune and lower-cases the rest. Scripts
// without case (Thai) pass through unchanged.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
