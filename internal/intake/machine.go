package intake

import (
	"errors"
	"fmt"
	"math"

	"github.com/yoockh/voiceintake/internal/models"
)

type State string

const (
	StateAwaitingAudio State = "AWAITING_AUDIO"
	StateTranscribing  State = "TRANSCRIBING"
	StateExtracting    State = "EXTRACTING"
	StateReconciling   State = "RECONCILING"
	StateAskAgain      State = "ASK_AGAIN"
	StateComplete      State = "COMPLETE"
	StateAborted       State = "ABORTED"
)

func (s State) Terminal() bool { return s == StateComplete || s == StateAborted }

var ErrInvalidTransition = errors.New("invalid state transition")

type DecisionKind string

const (
	DecisionAskAgain DecisionKind = "ASK_AGAIN"
	DecisionComplete DecisionKind = "COMPLETE"
)

// Decision is the routing result of one reconciled turn.
type Decision struct {
	Kind       DecisionKind
	Prompt     string
	Missing    []models.Field
	Confidence float64

	// Set when Kind is DecisionComplete.
	Summary string
	Partial bool

	// Audit detail of the turn.
	Accepted []models.Field
	Blended  []float64
}

// Machine is the per-session state machine. Every method is a pure
// transition: no I/O, and a call in the wrong state changes nothing.
type Machine struct {
	state      State
	record     models.SessionRecord
	turn       models.TurnResult
	candidates []models.Candidate

	reconciler *Reconciler
	locale     Locale
}

func NewMachine(rec models.SessionRecord, r *Reconciler, l Locale) *Machine {
	if rec.Accepted == nil {
		rec.Accepted = make(map[models.Field]string, len(models.Fields))
	}
	return &Machine{
		state:      StateAwaitingAudio,
		record:     rec,
		reconciler: r,
		locale:     l,
	}
}

func (m *Machine) State() State { return m.state }

// Record returns a copy of the accumulated record.
func (m *Machine) Record() models.SessionRecord { return m.record.Clone() }

// Turn returns the transcription of the turn in progress or last processed.
func (m *Machine) Turn() models.TurnResult { return m.turn }

func (m *Machine) expect(op string, want State) error {
	if m.state != want {
		return fmt.Errorf("%s: %w: state is %s, want %s", op, ErrInvalidTransition, m.state, want)
	}
	return nil
}

// BeginTurn accepts one audio chunk and counts the attempt.
func (m *Machine) BeginTurn() (int, error) {
	if err := m.expect("BeginTurn", StateAwaitingAudio); err != nil {
		return 0, err
	}
	m.record.TurnCount++
	m.turn = models.TurnResult{Attempt: m.record.TurnCount}
	m.candidates = nil
	m.state = StateTranscribing
	return m.record.TurnCount, nil
}

// Transcribed stores the transcription of the current chunk. A failed
// transcription is passed in as a zero result.
func (m *Machine) Transcribed(res models.TurnResult) error {
	if err := m.expect("Transcribed", StateTranscribing); err != nil {
		return err
	}
	res.Attempt = m.record.TurnCount
	res.STTConfidence = clamp01(res.STTConfidence)
	m.turn = res
	m.state = StateExtracting
	return nil
}

// Extracted stores the concatenated candidates of every source.
func (m *Machine) Extracted(cands []models.Candidate) error {
	if err := m.expect("Extracted", StateExtracting); err != nil {
		return err
	}
	m.candidates = cands
	m.state = StateReconciling
	return nil
}

// Decide reconciles the turn and routes to ASK_AGAIN or COMPLETE. The record
// is replaced in one step, so an aborted turn leaves it untouched.
func (m *Machine) Decide() (Decision, error) {
	if err := m.expect("Decide", StateReconciling); err != nil {
		return Decision{}, err
	}

	out := m.reconciler.Reconcile(m.record, m.turn.STTConfidence, m.candidates)
	m.record = out.Record
	m.candidates = nil

	d := Decision{
		Missing:    out.Missing,
		Confidence: out.FinalConfidence,
		Accepted:   out.Accepted,
		Blended:    out.Blended,
	}

	switch {
	case !out.NeedMore:
		d.Kind = DecisionComplete
	case m.record.BudgetExhausted():
		d.Kind = DecisionComplete
		d.Partial = true
	default:
		d.Kind = DecisionAskAgain
		d.Prompt = m.locale.MissingPrompt(out.Missing)
		m.state = StateAskAgain
		return d, nil
	}

	d.Summary = Format(m.record.Accepted, m.locale)
	m.state = StateComplete
	return d, nil
}

// Resume returns to waiting for audio after an ASK_AGAIN.
func (m *Machine) Resume() error {
	if err := m.expect("Resume", StateAskAgain); err != nil {
		return err
	}
	m.state = StateAwaitingAudio
	return nil
}

// Abort ends the session from any non-terminal state.
func (m *Machine) Abort() {
	if m.state.Terminal() {
		return
	}
	m.candidates = nil
	m.state = StateAborted
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
