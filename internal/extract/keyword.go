package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/yoockh/voiceintake/internal/models"
)

var (
	// ชาย and หญิง are also syllables of many names (สมชาย, สมหญิง, ศรีชาย),
	// so they count only after a gender cue or as the whole answer.
	thaiGenderCued = regexp.MustCompile(`(?:เพศ|เป็น|ผู้)\s*(หญิง|ชาย)`)
	thaiGenderBare = regexp.MustCompile(`^\s*(หญิง|ชาย)\s*(?:ครับ|ค่ะ|คะ|จ้ะ)?\s*$`)

	thaiGenderValue = map[string]string{"หญิง": "female", "ชาย": "male"}
)

type genderRule struct {
	keyword string
	value   string
}

// "female" precedes "male" so the longer word wins.
var latinGenderRules = []genderRule{
	{"female", "female"},
	{"woman", "female"},
	{"male", "male"},
	{"man", "male"},
}

// GenderKeywordSource matches explicit gender statements. It never guesses
// from names or polite particles.
type GenderKeywordSource struct{}

func (GenderKeywordSource) Name() string { return "gender_keyword" }

func (GenderKeywordSource) Extract(_ context.Context, transcript string) ([]models.Candidate, error) {
	text := strings.ToLower(transcript)

	for _, re := range []*regexp.Regexp{thaiGenderCued, thaiGenderBare} {
		if m := re.FindStringSubmatch(text); m != nil {
			return genderCandidate(thaiGenderValue[m[1]], strings.TrimSpace(m[0])), nil
		}
	}
	for _, r := range latinGenderRules {
		if idx := indexWord(text, r.keyword); idx >= 0 {
			return genderCandidate(r.value, text[idx:idx+len(r.keyword)]), nil
		}
	}
	return nil, nil
}

func genderCandidate(value, evidence string) []models.Candidate {
	return []models.Candidate{{
		Field:       models.FieldGender,
		Value:       models.StringPtr(value),
		Evidence:    &evidence,
		Fluency:     1,
		Continuity:  1,
		Correctness: 1,
	}}
}

// indexWord finds a standalone Latin keyword, so "male" does not match
// inside "female" and "man" not inside "mango".
func indexWord(text, kw string) int {
	from := 0
	for {
		i := strings.Index(text[from:], kw)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(kw)
		if (i == 0 || !isLatinLetter(text[i-1])) && (end == len(text) || !isLatinLetter(text[end])) {
			return i
		}
		from = i + 1
	}
}

func isLatinLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
