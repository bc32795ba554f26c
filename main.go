package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	orchestratorx "github.com/gharmitra/gharmitra/agent/agents/orchestrator"
	contractx "github.com/gharmitra/gharmitra/agent/contract"
	dialoguex "github.com/gharmitra/gharmitra/agent/dialogue"
	promptx "github.com/gharmitra/gharmitra/agent/prompt"
	statex "github.com/gharmitra/gharmitra/agent/state"
	configx "github.com/gharmitra/gharmitra/pkg/config"
	_ "github.com/gharmitra/gharmitra/pkg/logger/autoload"
	metricsx "github.com/gharmitra/gharmitra/pkg/metrics"
	openrouterx "github.com/gharmitra/gharmitra/pkg/openrouter"
	serpx "github.com/gharmitra/gharmitra/pkg/serp"
	speechx "github.com/gharmitra/gharmitra/pkg/speech"
	telephonyx "github.com/gharmitra/gharmitra/pkg/telephony"
)

type AppConfig struct {
	StateBackend string `envconfig:"STATE_BACKEND" split_words:"true" default:"memory"`
	MetricsAddr  string `envconfig:"METRICS_ADDR" split_words:"true"`
	Voice        bool   `envconfig:"VOICE" split_words:"true" default:"false"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("GHARMITRA")

	m := metricsx.New("gharmitra", prometheus.DefaultRegisterer)
	if appCfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metricsx.Handler())
			if err := http.ListenAndServe(appCfg.MetricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	store := newStore(ctx, appCfg.StateBackend)
	searcher := serpx.NewClient(*configx.MustNew[serpx.Config]("SERPAPI"), m)
	strategy := newStrategy(ctx, appCfg.Voice, m)
	synth := newSynthesizer(m)
	telephony := newTelephony()

	agent, err := orchestratorx.New(store, strategy, searcher, synth, telephony, m)
	if err != nil {
		panic(err)
	}

	runChatLoop(ctx, agent, appCfg.Voice)
}

func newStore(ctx context.Context, backend string) statex.Store {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "redis":
		store, err := statex.NewUpstashRedisStore(*configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS"))
		if err != nil {
			panic(err)
		}
		return store
	case "postgres":
		store, err := statex.NewPostgresStore(*configx.MustNew[statex.PostgresConfig]("POSTGRES"))
		if err != nil {
			panic(err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			panic(err)
		}
		return store
	default:
		return statex.NewMemoryStore()
	}
}

func newStrategy(ctx context.Context, voice bool, m *metricsx.Metrics) dialoguex.Strategy {
	ruleBased := dialoguex.NewRuleBased()

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	if !openRouterCfg.Enabled() {
		log.Info().Msg("no openrouter key configured, using rule-based responses")
		return ruleBased
	}

	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("chat model init failed, using rule-based responses")
		m.Fallbacks.WithLabelValues("model").Inc()
		return ruleBased
	}

	prompts := promptx.LoadPromptSet()
	systemPrompt := prompts.Assistant
	if voice {
		systemPrompt = prompts.CallScript
	}
	generative, err := dialoguex.NewGenerative(ctx, chatModel, systemPrompt, ruleBased)
	if err != nil {
		log.Warn().Err(err).Msg("generative strategy init failed, using rule-based responses")
		m.Fallbacks.WithLabelValues("model").Inc()
		return ruleBased
	}
	return generative
}

func newSynthesizer(m *metricsx.Metrics) contractx.Synthesizer {
	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	client := openrouterx.NewClient(*openRouterCfg)
	return speechx.NewSynthesizer(client, *configx.MustNew[speechx.Config]("SPEECH"), m)
}

func newTelephony() contractx.Telephony {
	cfg, err := configx.New[telephonyx.Config]("TWILIO")
	if err != nil {
		log.Info().Msg("twilio not configured, outbound calls disabled")
		return nil
	}
	service, err := telephonyx.NewService(*cfg)
	if err != nil {
		log.Info().Msg("twilio not configured, outbound calls disabled")
		return nil
	}
	return service
}

func runChatLoop(ctx context.Context, agent *orchestratorx.Orchestrator, voice bool) {
	sessionID := uuid.NewString()
	fmt.Printf("session %s started, type your message (ctrl-d to exit)\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		out, err := agent.HandleTurn(ctx, contractx.TurnInput{
			SessionID: sessionID,
			Utterance: line,
			Voice:     voice,
		})
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			continue
		}

		fmt.Println(out.Reply)
		for i, r := range out.SearchResults {
			fmt.Printf("  %d. %s\n     %s\n", i+1, r.Title, r.Link)
		}
		if out.CallEnded && out.Outcome != nil {
			fmt.Printf("call ended: %s (next: %s)\n", out.Outcome.Outcome, out.Outcome.NextSteps)
			break
		}
	}
}
