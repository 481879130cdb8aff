package models

// SessionRecord is the accumulating state of one voice session. It lives in
// memory for the lifetime of the session and is owned by a single goroutine.
type SessionRecord struct {
	SessionID string

	// Accepted holds confirmed values. An absent key means "not yet known".
	Accepted map[Field]string

	// Scores is the blended confidence of every candidate considered so far.
	Scores []float64

	TurnCount int
	MaxTurns  int
}

func NewSessionRecord(sessionID string, maxTurns int) SessionRecord {
	return SessionRecord{
		SessionID: sessionID,
		Accepted:  make(map[Field]string, len(Fields)),
		MaxTurns:  maxTurns,
	}
}

// Clone returns a deep copy so a turn can be applied all-or-nothing.
func (r SessionRecord) Clone() SessionRecord {
	out := r
	out.Accepted = make(map[Field]string, len(r.Accepted))
	for k, v := range r.Accepted {
		out.Accepted[k] = v
	}
	out.Scores = append([]float64(nil), r.Scores...)
	return out
}

// Missing lists fields without an accepted value, in declaration order.
func (r SessionRecord) Missing() []Field {
	var out []Field
	for _, f := range Fields {
		if _, ok := r.Accepted[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

func (r SessionRecord) Complete() bool { return len(r.Missing()) == 0 }

// FinalConfidence is the mean of every blended score seen this session.
func (r SessionRecord) FinalConfidence() float64 {
	if len(r.Scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range r.Scores {
		sum += s
	}
	return sum / float64(len(r.Scores))
}

// BudgetExhausted reports whether the turn budget is used up. A non-positive
// MaxTurns means unlimited.
func (r SessionRecord) BudgetExhausted() bool {
	return r.MaxTurns > 0 && r.TurnCount >= r.MaxTurns
}
