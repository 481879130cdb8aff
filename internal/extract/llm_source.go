package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/yoockh/voiceintake/internal/models"
	"github.com/yoockh/voiceintake/internal/providers/llm"
)

const extractionPrompt = `You extract structured identification data from a Thai or English voice transcript.
Find these fields; when a field is not present use null:
- given_name
- surname
- gender
- phone
- plate

Rules:
1. If a name is spelled out letter by letter (A B C, or เอ บี ซี), the spelled letters win.
2. Correct obvious speech-to-text mistakes in both Thai and English.
3. "evidence" is the exact transcript span that supports the value.
4. Score the evidence from 0.0 to 1.0:
   - fluency: the span has no unrelated words mixed in and is not cut off
   - continuity: the speaker said it in one go without long pauses
   - correctness: the words and the data format are right
5. Do not infer gender from the name or from polite particles (ครับ, ค่ะ). Only fill gender when it is stated.
6. A vehicle plate starts with Thai consonants (ก, กอ) followed by digits, or sometimes a leading digit (1กง9874). At most 4 consecutive digits; otherwise leave it null.
7. A phone number is exactly 10 digits; otherwise leave it null.

Reply with a JSON array only, no prose, one object per field:
[{"field":"given_name","value":"...","evidence":"...","fluency":0.0,"continuity":0.0,"correctness":0.0}]

Transcript:
%s`

// LLMSource asks a language model for candidates of every field.
type LLMSource struct {
	provider llm.Provider
	fields   map[models.Field]bool
}

// NewLLMSource builds a model-backed source. When fields is non-empty only
// candidates for those fields are kept.
func NewLLMSource(p llm.Provider, fields ...models.Field) *LLMSource {
	s := &LLMSource{provider: p}
	if len(fields) > 0 {
		s.fields = make(map[models.Field]bool, len(fields))
		for _, f := range fields {
			s.fields[f] = true
		}
	}
	return s
}

func (s *LLMSource) Name() string { return "llm" }

func (s *LLMSource) Extract(ctx context.Context, transcript string) ([]models.Candidate, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, nil
	}

	chunks, errs := s.provider.StreamAnswer(ctx, fmt.Sprintf(extractionPrompt, transcript))

	var full strings.Builder
	for chunk := range chunks {
		full.WriteString(chunk)
	}
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("llm extract: %w", err)
	}

	cands := ParseCandidates(full.String())
	if s.fields == nil {
		return cands, nil
	}
	out := cands[:0]
	for _, c := range cands {
		if s.fields[c.Field] {
			out = append(out, c)
		}
	}
	return out, nil
}
