package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"

	"relaybackend/models"
	"relaybackend/providers"
	"relaybackend/usecases"
)

const maxWebhookBodyBytes = 1 << 20

// WebhooksHandler receives provider callbacks and hands them to the relay
type WebhooksHandler struct {
	relayUseCase usecases.RelayUseCaseInterface
	relayTimeout time.Duration
	rateLimit    int
}

func NewWebhooksHandler(
	relayUseCase usecases.RelayUseCaseInterface,
	relayTimeout time.Duration,
	rateLimit int,
) *WebhooksHandler {
	return &WebhooksHandler{
		relayUseCase: relayUseCase,
		relayTimeout: relayTimeout,
		rateLimit:    rateLimit,
	}
}

// HandleTrelloWebhook answers Trello's HEAD/GET callback probe immediately and relays POSTs
func (h *WebhooksHandler) HandleTrelloWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead || r.Method == http.MethodGet {
		log.Printf("📋 Trello callback probe (%s) received from %s", r.Method, r.RemoteAddr)
		w.WriteHeader(http.StatusOK)
		return
	}
	h.relay(w, r, models.ProviderTrello)
}

func (h *WebhooksHandler) HandleGitHubWebhook(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, models.ProviderGitHub)
}

func (h *WebhooksHandler) HandleGoogleCalendarWebhook(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, models.ProviderGoogleCalendar)
}

func (h *WebhooksHandler) relay(w http.ResponseWriter, r *http.Request, provider models.Provider) {
	log.Printf("📨 %s webhook received from %s", provider, r.RemoteAddr)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			log.Printf("❌ %s webhook body too large", provider)
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		log.Printf("❌ Failed to read %s webhook body: %v", provider, err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	hook := &models.InboundWebhook{
		Provider:   provider,
		Method:     r.Method,
		GuildID:    query.Get("guildId"),
		Query:      query,
		Header:     r.Header.Clone(),
		Body:       body,
		ReceivedAt: time.Now(),
	}

	// The provider's connection may drop while we call out, so the relay gets its own deadline
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.relayTimeout)
	defer cancel()

	result := h.relayUseCase.Handle(ctx, hook)
	if result.StatusCode == http.StatusOK {
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Error(w, result.Reason, result.StatusCode)
}

// SetupEndpoints registers the provider callback routes behind a per-IP rate limit
func (h *WebhooksHandler) SetupEndpoints(router *mux.Router) {
	log.Printf("🚀 Registering webhook endpoints")
	limit := httprate.LimitByIP(h.rateLimit, time.Minute)

	router.Handle(providers.TrelloWebhookPath, limit(http.HandlerFunc(h.HandleTrelloWebhook))).
		Methods(http.MethodHead, http.MethodGet, http.MethodPost)
	log.Printf("✅ HEAD|GET|POST %s endpoint registered", providers.TrelloWebhookPath)

	router.Handle(providers.GitHubWebhookPath, limit(http.HandlerFunc(h.HandleGitHubWebhook))).
		Methods(http.MethodPost)
	log.Printf("✅ POST %s endpoint registered", providers.GitHubWebhookPath)

	router.Handle(providers.GoogleCalendarWebhookPath, limit(http.HandlerFunc(h.HandleGoogleCalendarWebhook))).
		Methods(http.MethodPost)
	log.Printf("✅ POST %s endpoint registered", providers.GoogleCalendarWebhookPath)
}
