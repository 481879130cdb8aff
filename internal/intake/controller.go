package intake

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/voiceintake/internal/models"
)

// Transcriber turns one audio chunk into text. stt.Provider satisfies it.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
}

// Transcoder converts container/codec before transcription.
type Transcoder interface {
	Transcode(ctx context.Context, audio []byte) ([]byte, error)
}

// Extractor yields candidates for one transcript. extract.Composite
// satisfies it.
type Extractor interface {
	Extract(ctx context.Context, transcript string) ([]models.Candidate, error)
}

type Options struct {
	STT        Transcriber
	Transcoder Transcoder // optional
	Extractor  Extractor
	Policy     Policy
	Locale     Locale
	Language   string
	MaxTurns   int
	Logger     *logrus.Logger
}

// Controller drives the I/O of a turn and feeds the results to a Machine.
// It holds only read-only handles and is shared by all sessions.
type Controller struct {
	stt        Transcriber
	transcoder Transcoder
	extractor  Extractor
	reconciler *Reconciler
	locale     Locale
	language   string
	maxTurns   int
	log        *logrus.Logger
}

func NewController(o Options) (*Controller, error) {
	if o.STT == nil || o.Extractor == nil {
		return nil, errors.New("intake.Controller missing dependency: STT/Extractor must be set")
	}
	if o.Locale.Code == "" {
		o.Locale = LocaleThai
	}
	if o.Logger == nil {
		o.Logger = logrus.New()
	}
	return &Controller{
		stt:        o.STT,
		transcoder: o.Transcoder,
		extractor:  o.Extractor,
		reconciler: NewReconciler(o.Policy),
		locale:     o.Locale,
		language:   o.Language,
		maxTurns:   o.MaxTurns,
		log:        o.Logger,
	}, nil
}

func (c *Controller) Locale() Locale { return c.locale }

// Session is one live voice interaction. It must only be used by the
// goroutine that owns the connection.
type Session struct {
	ID string
	*Machine
}

func (c *Controller) NewSession(id string) *Session {
	rec := models.NewSessionRecord(id, c.maxTurns)
	return &Session{ID: id, Machine: NewMachine(rec, c.reconciler, c.locale)}
}

// TurnReport describes a processed turn for the transport and audit sinks.
type TurnReport struct {
	STT        models.TurnResult
	STTErr     error
	Candidates []models.Candidate
	Decision   Decision
}

// ProcessTurn runs transcribe, extract, reconcile and decide for one chunk.
// Collaborator failures never fail the turn; only an invalid state or a
// cancelled context does, and cancellation aborts the session.
func (c *Controller) ProcessTurn(ctx context.Context, s *Session, audio []byte) (TurnReport, error) {
	attempt, err := s.BeginTurn()
	if err != nil {
		return TurnReport{}, err
	}

	log := c.log.WithFields(logrus.Fields{
		"session_id": s.ID,
		"attempt":    attempt,
	})

	var rep TurnReport
	res, sttErr := c.transcribe(ctx, audio)
	if sttErr != nil {
		log.WithError(sttErr).Warn("transcription failed, treating turn as empty")
		rep.STTErr = sttErr
		res = models.TurnResult{}
	}
	if err := ctx.Err(); err != nil {
		s.Abort()
		return TurnReport{}, err
	}
	if err := s.Transcribed(res); err != nil {
		return TurnReport{}, err
	}
	rep.STT = s.Turn()

	var cands []models.Candidate
	if rep.STT.Transcript != "" {
		cands, err = c.extractor.Extract(ctx, rep.STT.Transcript)
		if err != nil {
			log.WithError(err).Warn("extraction failed, no candidates this turn")
			cands = nil
		}
	}
	if err := ctx.Err(); err != nil {
		s.Abort()
		return TurnReport{}, err
	}
	if err := s.Extracted(cands); err != nil {
		return TurnReport{}, err
	}
	rep.Candidates = cands

	d, err := s.Decide()
	if err != nil {
		return TurnReport{}, err
	}
	rep.Decision = d

	if d.Kind == DecisionAskAgain {
		if err := s.Resume(); err != nil {
			return TurnReport{}, err
		}
	}

	log.WithFields(logrus.Fields{
		"stt_confidence": rep.STT.STTConfidence,
		"candidates":     len(cands),
		"accepted":       models.FieldStrings(d.Accepted),
		"missing":        models.FieldStrings(d.Missing),
		"decision":       d.Kind,
		"partial":        d.Partial,
	}).Info("turn processed")

	return rep, nil
}

func (c *Controller) transcribe(ctx context.Context, audio []byte) (models.TurnResult, error) {
	if len(audio) == 0 {
		return models.TurnResult{}, errors.New("empty audio chunk")
	}
	if c.transcoder != nil {
		converted, err := c.transcoder.Transcode(ctx, audio)
		if err != nil {
			return models.TurnResult{}, err
		}
		audio = converted
	}
	text, conf, err := c.stt.Transcribe(ctx, audio, c.language)
	if err != nil {
		return models.TurnResult{}, err
	}
	return models.TurnResult{Transcript: text, STTConfidence: conf}, nil
}
