package intake

import (
	"fmt"
	"strings"

	"github.com/yoockh/voiceintake/internal/models"
)

// Locale carries the user-facing strings of a session.
type Locale struct {
	Code          string
	Greeting      string
	SummaryHeader string
	missingFormat string
}

var (
	LocaleThai = Locale{
		Code:          "th",
		Greeting:      "กรุณากดปุ่มเพื่อพูดข้อมูลของคุณ",
		SummaryHeader: "ข้อมูลของคุณ",
		missingFormat: "ยังขาดข้อมูล %s กรุณาพูดเพิ่มเติม",
	}
	LocaleEnglish = Locale{
		Code:          "en",
		Greeting:      "Press the button and tell us your details.",
		SummaryHeader: "Your details",
		missingFormat: "Still missing %s, please tell us more.",
	}
)

// LocaleFor returns the locale for a language code, Thai by default.
func LocaleFor(code string) Locale {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "en", "en-us", "english":
		return LocaleEnglish
	default:
		return LocaleThai
	}
}

// MissingPrompt asks for the given fields, or returns "" when none are missing.
func (l Locale) MissingPrompt(missing []models.Field) string {
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf(l.missingFormat, strings.Join(models.FieldStrings(missing), ", "))
}
