package extract

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/voiceintake/internal/models"
)

// Source yields candidate field values for one transcript. Implementations
// must tolerate Thai or English input and broken sentences.
type Source interface {
	Name() string
	Extract(ctx context.Context, transcript string) ([]models.Candidate, error)
}

// Composite runs every source in order and concatenates their candidates.
// A failing source contributes nothing; the others still apply.
type Composite struct {
	sources []Source
	log     *logrus.Logger
}

func NewComposite(log *logrus.Logger, sources ...Source) *Composite {
	if log == nil {
		log = logrus.New()
	}
	return &Composite{sources: sources, log: log}
}

func (c *Composite) Extract(ctx context.Context, transcript string) ([]models.Candidate, error) {
	var out []models.Candidate
	for _, s := range c.sources {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		cands, err := s.Extract(ctx, transcript)
		if err != nil {
			c.log.WithError(err).WithField("source", s.Name()).Warn("extraction source failed")
			continue
		}
		for i := range cands {
			if cands[i].Source == "" {
				cands[i].Source = s.Name()
			}
		}
		out = append(out, cands...)
	}
	return out, nil
}
