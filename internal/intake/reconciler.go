package intake

import (
	"strings"

	"github.com/yoockh/voiceintake/internal/models"
)

// DefaultThreshold is the minimum blended confidence for accepting a value.
const DefaultThreshold = 0.7

// Policy holds the acceptance knobs of the reconciler.
type Policy struct {
	Threshold       float64
	FieldThresholds map[models.Field]float64
}

func DefaultPolicy() Policy {
	return Policy{Threshold: DefaultThreshold}
}

func (p Policy) thresholdFor(f models.Field) float64 {
	if t, ok := p.FieldThresholds[f]; ok {
		return t
	}
	if p.Threshold <= 0 {
		return DefaultThreshold
	}
	return p.Threshold
}

// Reconciler merges per-turn candidates into a session record.
type Reconciler struct {
	policy Policy
}

func NewReconciler(p Policy) *Reconciler {
	return &Reconciler{policy: p}
}

// Outcome is everything derived from a record after a reconciliation.
type Outcome struct {
	Record          models.SessionRecord
	Blended         []float64
	Accepted        []models.Field // fields filled during this call
	Missing         []models.Field
	FinalConfidence float64
	NeedMore        bool
}

// Blend combines transcription confidence and extraction quality with equal
// weight. Out-of-range inputs are clamped to [0,1].
func Blend(sttConfidence float64, c models.Candidate) float64 {
	c.Fluency, c.Continuity, c.Correctness = clamp01(c.Fluency), clamp01(c.Continuity), clamp01(c.Correctness)
	return clamp01(sttConfidence)*0.5 + c.QualityAvg()*0.5
}

func usableValue(v *string) bool {
	if v == nil {
		return false
	}
	s := strings.TrimSpace(*v)
	return s != "" && !strings.EqualFold(s, "null")
}

func (r *Reconciler) accepts(f models.Field, v *string, blended float64) bool {
	return usableValue(v) && blended >= r.policy.thresholdFor(f)
}

// Reconcile applies candidates to a copy of rec. The input record is never
// modified; the caller swaps in Outcome.Record once the turn is done.
func (r *Reconciler) Reconcile(rec models.SessionRecord, sttConfidence float64, candidates []models.Candidate) Outcome {
	next := rec.Clone()
	if next.Accepted == nil {
		next.Accepted = make(map[models.Field]string, len(models.Fields))
	}

	out := Outcome{}
	for _, c := range candidates {
		if !c.Field.Valid() {
			continue
		}

		blended := Blend(sttConfidence, c)
		out.Blended = append(out.Blended, blended)
		next.Scores = append(next.Scores, blended)

		if !r.accepts(c.Field, c.Value, blended) {
			continue
		}
		if _, done := next.Accepted[c.Field]; done {
			continue
		}
		next.Accepted[c.Field] = strings.TrimSpace(*c.Value)
		out.Accepted = append(out.Accepted, c.Field)
	}

	out.Record = next
	out.Missing = next.Missing()
	out.FinalConfidence = next.FinalConfidence()
	out.NeedMore = len(out.Missing) > 0
	return out
}
