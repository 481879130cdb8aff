package models

// Candidate is one proposed value for one field, produced during one turn.
// Value == nil means the source looked for the field and did not find it.
type Candidate struct {
	Field    Field   `json:"field" bson:"field"`
	Value    *string `json:"value" bson:"value,omitempty"`
	Evidence *string `json:"evidence,omitempty" bson:"evidence,omitempty"`

	// Transcript-quality signals for the evidence span, each in [0,1].
	Fluency     float64 `json:"fluency" bson:"fluency"`
	Continuity  float64 `json:"continuity" bson:"continuity"`
	Correctness float64 `json:"correctness" bson:"correctness"`

	// Source names the extractor that produced the candidate. Audit only.
	Source string `json:"source,omitempty" bson:"source,omitempty"`
}

// QualityAvg is the mean of the three quality signals.
func (c Candidate) QualityAvg() float64 {
	return (c.Fluency + c.Continuity + c.Correctness) / 3
}

// TurnResult is the output of transcribing one audio chunk.
type TurnResult struct {
	Transcript    string  `json:"transcript"`
	STTConfidence float64 `json:"stt_confidence"`
	Attempt       int     `json:"attempt"`
}

// StringPtr is a small helper for building candidates.
func StringPtr(s string) *string { return &s }
