package stt

import (
	"context"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

type GoogleSpeech struct {
	c *speech.Client

	Encoding     speechpb.RecognitionConfig_AudioEncoding
	SampleRateHz int32

	// Extra languages the recogniser may pick instead of the primary one.
	AlternativeLanguages []string
}

// NewGoogleSpeech defaults to the browser recorder format (webm/opus at
// 48kHz). Use WithLinear16 when audio is transcoded to wav first.
func NewGoogleSpeech(ctx context.Context, alternatives ...string) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{
		c:                    c,
		Encoding:             speechpb.RecognitionConfig_WEBM_OPUS,
		SampleRateHz:         48000,
		AlternativeLanguages: alternatives,
	}, nil
}

func (g *GoogleSpeech) WithLinear16(sampleRate int32) *GoogleSpeech {
	g.Encoding = speechpb.RecognitionConfig_LINEAR16
	g.SampleRateHz = sampleRate
	return g
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

// language example: "th-TH", "en-US"
func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	if language == "" {
		language = "th-TH"
	}

	var alts []string
	for _, a := range g.AlternativeLanguages {
		if a != "" && a != language {
			alts = append(alts, a)
		}
	}

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   g.Encoding,
			SampleRateHertz:            g.SampleRateHz,
			LanguageCode:               language,
			AlternativeLanguageCodes:   alts,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", 0, err
	}

	// A long utterance comes back as several results; join the best
	// alternative of each and average their confidence.
	var parts []string
	var confSum float64
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		best := r.Alternatives[0]
		for _, alt := range r.Alternatives[1:] {
			if alt.Confidence > best.Confidence {
				best = alt
			}
		}
		if best.Transcript == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(best.Transcript))
		confSum += float64(best.Confidence)
	}
	if len(parts) == 0 {
		return "", 0, nil
	}

	return strings.Join(parts, " "), confSum / float64(len(parts)), nil
}
