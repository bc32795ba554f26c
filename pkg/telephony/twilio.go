// Package telephony places outbound voice calls through Twilio. The status
// and recording webhooks Twilio fires back are translated into the call
// status values the session layer understands.
package telephony

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	logx "github.com/gharmitra/gharmitra/pkg/logger"
)

type Config struct {
	AccountSID  string `envconfig:"ACCOUNT_SID" split_words:"true" required:"true"`
	AuthToken   string `envconfig:"AUTH_TOKEN" split_words:"true" required:"true"`
	From        string `envconfig:"FROM" split_words:"true" required:"true"`
	VoiceURL    string `envconfig:"VOICE_URL" split_words:"true" required:"true"`
	CallbackURL string `envconfig:"CALLBACK_URL" split_words:"true"`
}

type Service struct {
	client      *twilio.RestClient
	from        string
	voiceURL    string
	callbackURL string
	log         zerolog.Logger
}

func NewService(cfg Config) (*Service, error) {
	accountSID := strings.TrimSpace(cfg.AccountSID)
	authToken := strings.TrimSpace(cfg.AuthToken)
	from := strings.TrimSpace(cfg.From)
	voiceURL := strings.TrimSpace(cfg.VoiceURL)

	if accountSID == "" || authToken == "" || from == "" {
		return nil, errors.New("missing twilio credentials")
	}
	if voiceURL == "" {
		return nil, errors.New("twilio voice url is required")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &Service{
		client:      client,
		from:        from,
		voiceURL:    voiceURL,
		callbackURL: strings.TrimSpace(cfg.CallbackURL),
		log:         logx.Component("telephony"),
	}, nil
}

// InitiateCall places the outbound call. The session id and call context
// ride along as URL parameters so the voice webhook can resume the session.
func (s *Service) InitiateCall(ctx context.Context, phoneNumber, sessionID string, property *contractx.PropertyInfo, customer *contractx.CustomerInfo) (contractx.CallDial, error) {
	params := &twilioApi.CreateCallParams{}
	params.SetTo(phoneNumber)
	params.SetFrom(s.from)
	params.SetUrl(s.voiceCallbackURL(sessionID, property, customer))
	if s.callbackURL != "" {
		params.SetStatusCallback(s.callbackURL)
		params.SetStatusCallbackEvent([]string{"initiated", "ringing", "answered", "completed"})
	}

	resp, err := s.client.Api.CreateCall(params)
	if err != nil {
		return contractx.CallDial{}, fmt.Errorf("create call: %w", err)
	}

	callID := ""
	if resp.Sid != nil {
		callID = *resp.Sid
	}

	s.log.Info().
		Str("session_id", sessionID).
		Str("call_id", callID).
		Msg("twilio call created")

	return contractx.CallDial{Success: true, CallID: callID}, nil
}

func (s *Service) voiceCallbackURL(sessionID string, property *contractx.PropertyInfo, customer *contractx.CustomerInfo) string {
	u, err := url.Parse(s.voiceURL)
	if err != nil {
		return s.voiceURL
	}

	q := u.Query()
	q.Set("session_id", sessionID)

	// Compact context payload; the webhook side decodes it back.
	if property != nil || customer != nil {
		payload, err := json.Marshal(map[string]any{
			"property": property,
			"customer": customer,
		})
		if err == nil {
			q.Set("context", string(payload))
		}
	}

	u.RawQuery = q.Encode()
	return u.String()
}

// MapCallStatus translates a Twilio status webhook value into the session
// layer's call status. Unrecognized values map to queued.
func MapCallStatus(raw string) contractx.CallStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "in-progress", "answered":
		return contractx.CallStatusInProgress
	case "completed":
		return contractx.CallStatusCompleted
	case "failed", "busy", "no-answer", "canceled":
		return contractx.CallStatusFailed
	default:
		return contractx.CallStatusQueued
	}
}
