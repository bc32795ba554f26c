package logx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestComponentTagsLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	defer func() { log.Logger = prev }()
	log.Logger = zerolog.New(&buf)

	lg := Component("serp")
	lg.Info().Msg("fallback taken")

	out := buf.String()
	if !strings.Contains(out, `"component":"serp"`) {
		t.Fatalf("log output = %q, want component field", out)
	}
	if !strings.Contains(out, "fallback taken") {
		t.Fatalf("log output = %q, want message", out)
	}
}
