// Package speech turns assistant replies into spoken audio for voice
// sessions. Synthesis is best effort: when no client is configured or the
// provider call fails, the caller still gets a text-only descriptor so the
// conversation keeps moving.
package speech

import (
	"context"
	"io"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	metricsx "github.com/gharmitra/gharmitra/pkg/metrics"
)

type Config struct {
	Model string `envconfig:"MODEL" split_words:"true" default:"tts-1"`
	Voice string `envconfig:"VOICE" split_words:"true" default:"alloy"`
}

type Synthesizer struct {
	client  *openaisdk.Client
	model   string
	voice   string
	metrics *metricsx.Metrics
}

func NewSynthesizer(client *openaisdk.Client, cfg Config, m *metricsx.Metrics) *Synthesizer {
	if m == nil {
		m = metricsx.Nop()
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "tts-1"
	}
	voice := strings.TrimSpace(cfg.Voice)
	if voice == "" {
		voice = "alloy"
	}
	return &Synthesizer{client: client, model: model, voice: voice, metrics: m}
}

// Synthesize renders text to MP3 audio. It never fails: on any error the
// descriptor carries the text alone and Format is left empty.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) *contractx.AudioDescriptor {
	desc := &contractx.AudioDescriptor{Text: text}
	if s == nil || s.client == nil || strings.TrimSpace(text) == "" {
		return desc
	}

	resp, err := s.client.Audio.Speech.New(ctx, openaisdk.AudioSpeechNewParams{
		Model:          openaisdk.SpeechModel(s.model),
		Input:          text,
		Voice:          openaisdk.AudioSpeechNewParamsVoice(s.voice),
		ResponseFormat: openaisdk.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		s.metrics.Fallbacks.WithLabelValues("speech").Inc()
		log.Warn().Err(err).Msg("speech synthesis failed, returning text only")
		return desc
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		s.metrics.Fallbacks.WithLabelValues("speech").Inc()
		log.Warn().Err(err).Msg("speech synthesis read failed, returning text only")
		return desc
	}

	desc.Format = "mp3"
	desc.Data = data
	return desc
}
