package extract

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/yoockh/voiceintake/internal/models"
)

// Score keys accepted from model output, English first then the Thai labels
// of the original prompt.
var (
	fluencyKeys     = []string{"fluency", "คะเเนนความลื่นไหลของข้อความ", "คะแนนความลื่นไหลของข้อความ"}
	continuityKeys  = []string{"continuity", "คะเเนนความต่อเนื่องของข้อความ", "คะแนนความต่อเนื่องของข้อความ"}
	correctnessKeys = []string{"correctness", "คะเเนนความถูกต้องของข้อความ", "คะแนนความถูกต้องของข้อความ"}
	evidenceKeys    = []string{"evidence", "หลักฐาน"}
)

// ParseCandidates converts a schema-free model reply into typed candidates.
// Anything that is not a usable candidate is dropped here, so the reconciler
// only ever sees well-formed input. A reply that is not JSON yields nil.
func ParseCandidates(raw string) []models.Candidate {
	raw = stripFences(raw)
	if raw == "" {
		return nil
	}

	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}

	var items []any
	switch v := payload.(type) {
	case []any:
		items = v
	case map[string]any:
		if inner, ok := v["candidates"].([]any); ok {
			items = inner
		} else {
			items = []any{v}
		}
	default:
		return nil
	}

	out := make([]models.Candidate, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		c, ok := candidateFrom(obj)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

func candidateFrom(obj map[string]any) (models.Candidate, bool) {
	name, ok := obj["field"].(string)
	if !ok {
		return models.Candidate{}, false
	}
	f, ok := models.ParseField(name)
	if !ok {
		return models.Candidate{}, false
	}

	c := models.Candidate{
		Field:       f,
		Value:       optString(obj["value"]),
		Fluency:     score(obj, fluencyKeys),
		Continuity:  score(obj, continuityKeys),
		Correctness: score(obj, correctnessKeys),
	}
	for _, k := range evidenceKeys {
		if e := optString(obj[k]); e != nil {
			c.Evidence = e
			break
		}
	}
	return c, true
}

// optString keeps string values only; numeric values are dropped.
func optString(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

// score returns the first parseable value among keys, clamped to [0,1].
// Missing or unparseable scores count as 0.
func score(obj map[string]any, keys []string) float64 {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		var f float64
		switch t := v.(type) {
		case float64:
			f = t
		case string:
			p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				return 0
			}
			f = p
		default:
			return 0
		}
		if math.IsNaN(f) || f < 0 {
			return 0
		}
		if f > 1 {
			return 1
		}
		return f
	}
	return 0
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```")
	if i := strings.IndexByte(raw, '\n'); i >= 0 && !strings.ContainsAny(raw[:i], "[{") {
		raw = raw[i+1:]
	}
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}
