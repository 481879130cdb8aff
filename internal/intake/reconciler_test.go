package intake

import (
	"math"
	"reflect"
	"testing"

	"github.com/yoockh/voiceintake/internal/models"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func cand(f models.Field, v string, q float64) models.Candidate {
	return models.Candidate{Field: f, Value: models.StringPtr(v), Fluency: q, Continuity: q, Correctness: q}
}

func TestBlend(t *testing.T) {
	tests := []struct {
		name string
		stt  float64
		c    models.Candidate
		want float64
	}{
		{"perfect quality", 0.8, cand(models.FieldGivenName, "x", 1), 0.9},
		{"mixed quality", 0.5, models.Candidate{Fluency: 0.4, Continuity: 0.6, Correctness: 0.8}, 0.55},
		{"zero stt", 0, cand(models.FieldGivenName, "x", 1), 0.5},
		{"clamped inputs", 1.5, models.Candidate{Fluency: 2, Continuity: -1, Correctness: 1}, 0.5 + (2.0/3)*0.5},
		{"nan stt", math.NaN(), cand(models.FieldGivenName, "x", 0.6), 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Blend(tt.stt, tt.c); !approx(got, tt.want) {
				t.Fatalf("Blend = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAcceptsThresholdBoundary(t *testing.T) {
	r := NewReconciler(DefaultPolicy())
	v := models.StringPtr("Somchai")

	if !r.accepts(models.FieldGivenName, v, 0.7) {
		t.Fatal("blended == threshold must be accepted")
	}
	if r.accepts(models.FieldGivenName, v, math.Nextafter(0.7, 0)) {
		t.Fatal("blended just below threshold must be rejected")
	}
}

func TestAcceptsRejectsUnusableValues(t *testing.T) {
	r := NewReconciler(DefaultPolicy())
	tests := []struct {
		name string
		v    *string
	}{
		{"nil", nil},
		{"empty", models.StringPtr("")},
		{"blank", models.StringPtr("   ")},
		{"null literal", models.StringPtr("null")},
		{"null any case", models.StringPtr(" NULL ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r.accepts(models.FieldPhone, tt.v, 1) {
				t.Fatalf("value %v accepted", tt.v)
			}
		})
	}
}

func TestReconcileDoesNotModifyInput(t *testing.T) {
	r := NewReconciler(DefaultPolicy())
	rec := models.NewSessionRecord("s1", 5)

	out := r.Reconcile(rec, 0.8, []models.Candidate{cand(models.FieldGivenName, "somchai", 1)})

	if len(rec.Accepted) != 0 || len(rec.Scores) != 0 {
		t.Fatalf("input record mutated: %+v", rec)
	}
	if out.Record.Accepted[models.FieldGivenName] != "somchai" {
		t.Fatalf("accepted = %v", out.Record.Accepted)
	}
}

func TestReconcileMonotonic(t *testing.T) {
	r := NewReconciler(DefaultPolicy())
	rec := models.NewSessionRecord("s1", 5)

	out := r.Reconcile(rec, 0.8, []models.Candidate{cand(models.FieldSurname, "Jaidee", 0.8)})
	if out.Record.Accepted[models.FieldSurname] != "Jaidee" {
		t.Fatalf("first value not accepted: %v", out.Record.Accepted)
	}

	out = r.Reconcile(out.Record, 1, []models.Candidate{cand(models.FieldSurname, "Somsri", 1)})
	if got := out.Record.Accepted[models.FieldSurname]; got != "Jaidee" {
		t.Fatalf("accepted value overwritten: %q", got)
	}
	if len(out.Accepted) != 0 {
		t.Fatalf("Accepted this turn = %v, want none", out.Accepted)
	}
}

func TestReconcileFirstCandidateWinsWithinTurn(t *testing.T) {
	r := NewReconciler(DefaultPolicy())
	out := r.Reconcile(models.NewSessionRecord("s1", 5), 0.8, []models.Candidate{
		cand(models.FieldGender, "male", 0.9),
		cand(models.FieldGender, "female", 1),
	})
	if got := out.Record.Accepted[models.FieldGender]; got != "male" {
		t.Fatalf("gender = %q, want male", got)
	}
	if len(out.Blended) != 2 || len(out.Record.Scores) != 2 {
		t.Fatalf("every candidate must be scored: blended=%v", out.Blended)
	}
}

func TestReconcileScoresRejectedCandidates(t *testing.T) {
	r := NewReconciler(DefaultPolicy())
	out := r.Reconcile(models.NewSessionRecord("s1", 5), 0.8, []models.Candidate{
		{Field: models.FieldPhone, Value: nil, Fluency: 1, Continuity: 1, Correctness: 1},
		cand(models.FieldPlate, "กข1234", 0.2),
		{Field: models.Field("age"), Value: models.StringPtr("30"), Fluency: 1, Continuity: 1, Correctness: 1},
	})

	if len(out.Record.Accepted) != 0 {
		t.Fatalf("nothing should be accepted: %v", out.Record.Accepted)
	}
	if len(out.Record.Scores) != 2 {
		t.Fatalf("scores = %v, want two (unknown field skipped)", out.Record.Scores)
	}
	if !approx(out.FinalConfidence, (0.9+0.5)/2) {
		t.Fatalf("final confidence = %v", out.FinalConfidence)
	}
}

func TestReconcileRejectionIsIdempotent(t *testing.T) {
	r := NewReconciler(DefaultPolicy())
	cands := []models.Candidate{cand(models.FieldPlate, "กข1234", 0.2)}

	first := r.Reconcile(models.NewSessionRecord("s1", 5), 0.8, cands)
	second := r.Reconcile(first.Record, 0.8, cands)

	if !reflect.DeepEqual(first.Record.Accepted, second.Record.Accepted) {
		t.Fatalf("accepted changed: %v -> %v", first.Record.Accepted, second.Record.Accepted)
	}
	if !reflect.DeepEqual(first.Missing, second.Missing) {
		t.Fatalf("missing changed: %v -> %v", first.Missing, second.Missing)
	}
}

func TestReconcileFieldThreshold(t *testing.T) {
	r := NewReconciler(Policy{
		Threshold:       0.7,
		FieldThresholds: map[models.Field]float64{models.FieldPhone: 0.95},
	})
	out := r.Reconcile(models.NewSessionRecord("s1", 5), 0.8, []models.Candidate{
		cand(models.FieldGivenName, "Somchai", 1),
		cand(models.FieldPhone, "0812345678", 1),
	})

	if _, ok := out.Record.Accepted[models.FieldGivenName]; !ok {
		t.Fatal("given_name should pass the global threshold")
	}
	if _, ok := out.Record.Accepted[models.FieldPhone]; ok {
		t.Fatal("phone should fail its own threshold")
	}
}

func TestReconcileTrimsAndCompletes(t *testing.T) {
	r := NewReconciler(DefaultPolicy())
	var cands []models.Candidate
	for _, f := range models.Fields {
		cands = append(cands, cand(f, "  v-"+string(f)+" ", 1))
	}
	out := r.Reconcile(models.NewSessionRecord("s1", 5), 0.8, cands)

	if out.NeedMore || len(out.Missing) != 0 {
		t.Fatalf("expected complete, missing=%v", out.Missing)
	}
	if got := out.Record.Accepted[models.FieldPlate]; got != "v-plate" {
		t.Fatalf("plate = %q", got)
	}
	if !reflect.DeepEqual(out.Accepted, models.Fields) {
		t.Fatalf("accepted order = %v", out.Accepted)
	}
}
