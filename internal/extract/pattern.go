package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/yoockh/voiceintake/internal/models"
)

var thaiDigits = strings.NewReplacer(
	"๐", "0", "๑", "1", "๒", "2", "๓", "3", "๔", "4",
	"๕", "5", "๖", "6", "๗", "7", "๘", "8", "๙", "9",
)

var (
	// Digit runs with optional spaces, dashes or dots between them.
	phoneRun = regexp.MustCompile(`\d[\d\s\-.]{8,}\d`)
	// Optional leading digit, one or two Thai consonants, up to four digits.
	// The prefix must not be glued to another Thai character, so the last
	// consonant of a word ("เลข 12") is not taken for a plate.
	plateRe = regexp.MustCompile(`(?:^|[^\dก-๛])(\d?[ก-ฮ]{1,2})\s?-?\s?(\d{1,4})(?:[^\d]|$)`)
	// Without a cue only the full glued form counts. Short words followed by
	// a number ("ผม 30 ปี") are everyday speech.
	compactPlateRe = regexp.MustCompile(`(?:^|[^\dก-๛])(\d?[ก-ฮ]{2})(\d{4})(?:[^\d]|$)`)
	plateCue       = regexp.MustCompile(`(?i)ทะเบียน|plate`)
)

// PhonePatternSource finds exactly ten-digit phone numbers.
type PhonePatternSource struct{}

func (PhonePatternSource) Name() string { return "phone_pattern" }

func (PhonePatternSource) Extract(_ context.Context, transcript string) ([]models.Candidate, error) {
	text := thaiDigits.Replace(transcript)
	for _, run := range phoneRun.FindAllString(text, -1) {
		digits := keepDigits(run)
		if len(digits) != 10 {
			continue
		}
		ev := run
		return []models.Candidate{{
			Field:       models.FieldPhone,
			Value:       models.StringPtr(digits),
			Evidence:    &ev,
			Fluency:     1,
			Continuity:  1,
			Correctness: 1,
		}}, nil
	}
	return nil, nil
}

// PlatePatternSource finds Thai vehicle plates. After a cue such as
// "ทะเบียน" short forms like "กข 1234" or "ก 12" are accepted; elsewhere only
// glued plates like "1กง9874" are.
type PlatePatternSource struct{}

func (PlatePatternSource) Name() string { return "plate_pattern" }

func (PlatePatternSource) Extract(_ context.Context, transcript string) ([]models.Candidate, error) {
	text := thaiDigits.Replace(transcript)

	var m []string
	if loc := plateCue.FindStringIndex(text); loc != nil {
		m = plateRe.FindStringSubmatch(text[loc[1]:])
	}
	if m == nil {
		m = compactPlateRe.FindStringSubmatch(text)
	}
	if m == nil {
		return nil, nil
	}
	value := m[1] + m[2]
	ev := strings.TrimSpace(m[0])
	return []models.Candidate{{
		Field:       models.FieldPlate,
		Value:       &value,
		Evidence:    &ev,
		Fluency:     1,
		Continuity:  1,
		Correctness: 1,
	}}, nil
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
