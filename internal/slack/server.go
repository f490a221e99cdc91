package slack

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

const (
	eventTimeout       = 2 * time.Minute
	healthCheckTimeout = 3 * time.Second
)

// HealthCheck reports whether a dependency of the server is reachable.
type HealthCheck func(ctx context.Context) error

type Server struct {
	messageHandler  *MessageHandler
	approvalHandler *ApprovalHandler
	signingSecret   string
	healthCheck     HealthCheck
	httpServer      *http.Server
}

// NewServer builds the events server. A nil health check always reports OK.
func NewServer(messageHandler *MessageHandler, approvalHandler *ApprovalHandler, signingSecret string, health HealthCheck) *Server {
	slog.Debug("🔐 Slack signing secret configured", "length", len(signingSecret))
	return &Server{
		messageHandler:  messageHandler,
		approvalHandler: approvalHandler,
		signingSecret:   signingSecret,
		healthCheck:     health,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/slack/events", s.handleEvents)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("❌ Error reading body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	sv, err := slack.NewSecretsVerifier(r.Header, s.signingSecret)
	if err != nil {
		slog.Warn("❌ Error creating secrets verifier", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if _, err := sv.Write(body); err != nil {
		slog.Error("❌ Error writing to verifier", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := sv.Ensure(); err != nil {
		slog.Warn("❌ Error verifying signature", "error", err)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		slog.Error("❌ Error parsing event", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if eventsAPIEvent.Type == slackevents.URLVerification {
		var challenge *slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			slog.Error("❌ Error unmarshaling challenge", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		slog.Info("✅ Responding to URL verification challenge")
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(challenge.Challenge))
		return
	}

	if eventsAPIEvent.Type == slackevents.CallbackEvent {
		// Slack retries events not acknowledged within 3s, so commands run
		// after the response is written.
		go s.dispatch(eventsAPIEvent.InnerEvent)
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) dispatch(innerEvent slackevents.EventsAPIInnerEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch ev := innerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		if err := s.messageHandler.HandleAppMention(ctx, ev); err != nil {
			slog.Error("❌ Error handling mention", "error", err)
		}

	case *slackevents.ReactionAddedEvent:
		if err := s.approvalHandler.HandleReaction(ctx, ev.Item.Channel, ev.Item.Timestamp, ev.Reaction); err != nil {
			slog.Error("❌ Error handling reaction", "error", err)
		}

	default:
		slog.Debug("⚠️ Unsupported event type", "type", innerEvent.Type)
	}
}

// Start starts the Slack event server and blocks until it stops
func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("🚀 Slack server starting", "port", port)
	slog.Info("📡 Event endpoint", "url", "http://localhost:"+port+"/slack/events")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleHealth reports OK when the health check passes
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthCheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := s.healthCheck(ctx); err != nil {
			slog.Warn("❌ Health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNAVAILABLE"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
