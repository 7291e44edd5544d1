package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"relaybackend/core"
	"relaybackend/middleware"
	"relaybackend/models"
	"relaybackend/usecases"
)

const maxAdminBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type OnboardGuildRequest struct {
	GuildID   string `json:"guild_id"   validate:"required"`
	ChannelID string `json:"channel_id" validate:"required"`
}

type UpdateCredentialsRequest struct {
	Credentials map[string]string `json:"credentials" validate:"required,min=1,dive,keys,required,endkeys,required"`
}

type UpdateIntegrationRequest struct {
	ChannelID *string `json:"channel_id" validate:"omitempty,min=1"`
	Enabled   *bool   `json:"enabled"`
}

type ServiceNamesRequest struct {
	Names []string `json:"names" validate:"required,min=1,dive,required"`
}

// AdminHTTPHandler exposes guild onboarding, credentials and subscriptions to administrators
type AdminHTTPHandler struct {
	setupUseCase usecases.SetupUseCaseInterface
}

func NewAdminHTTPHandler(setupUseCase usecases.SetupUseCaseInterface) *AdminHTTPHandler {
	return &AdminHTTPHandler{setupUseCase: setupUseCase}
}

func (h *AdminHTTPHandler) HandleOnboardGuild(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Onboard guild request received from %s", r.RemoteAddr)

	var req OnboardGuildRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	integrations, err := h.setupUseCase.OnboardGuild(r.Context(), req.GuildID, req.ChannelID)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	log.Printf("✅ Guild %s onboarded", req.GuildID)
	h.writeJSONResponse(w, http.StatusCreated, integrations)
}

func (h *AdminHTTPHandler) HandleRemoveGuild(w http.ResponseWriter, r *http.Request) {
	guildID := mux.Vars(r)["guildID"]
	log.Printf("📋 Remove guild %s request received from %s", guildID, r.RemoteAddr)

	deleted, err := h.setupUseCase.RemoveGuild(r.Context(), guildID)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *AdminHTTPHandler) HandleUpdateCredentials(w http.ResponseWriter, r *http.Request) {
	guildID, provider, ok := h.integrationVars(w, r)
	if !ok {
		return
	}
	log.Printf("📋 Update %s credentials request for guild %s received from %s", provider, guildID, r.RemoteAddr)

	var req UpdateCredentialsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	registration, err := h.setupUseCase.UpdateCredentials(r.Context(), guildID, provider, models.Credentials(req.Credentials))
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}

	log.Printf("✅ %s credentials updated for guild %s", provider, guildID)
	h.writeJSONResponse(w, http.StatusOK, registration)
}

func (h *AdminHTTPHandler) HandleClearCredentials(w http.ResponseWriter, r *http.Request) {
	guildID, provider, ok := h.integrationVars(w, r)
	if !ok {
		return
	}
	log.Printf("📋 Clear %s credentials request for guild %s received from %s", provider, guildID, r.RemoteAddr)

	if err := h.setupUseCase.ClearCredentials(r.Context(), guildID, provider); err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHTTPHandler) HandleUpdateIntegration(w http.ResponseWriter, r *http.Request) {
	guildID, provider, ok := h.integrationVars(w, r)
	if !ok {
		return
	}

	var req UpdateIntegrationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.ChannelID == nil && req.Enabled == nil {
		h.writeJSONResponse(w, http.StatusBadRequest, map[string]string{"error": "nothing to update"})
		return
	}

	integration, err := h.setupUseCase.UpdateIntegration(r.Context(), guildID, provider, models.IntegrationUpdate{
		DiscordChannelID: req.ChannelID,
		Enabled:          req.Enabled,
	})
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, integration)
}

func (h *AdminHTTPHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	guildID, provider, ok := h.integrationVars(w, r)
	if !ok {
		return
	}

	settings, err := h.setupUseCase.GetSettings(r.Context(), guildID, provider)
	if err != nil {
		h.writeErrorResponse(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, settings)
}

func (h *AdminHTTPHandler) HandleListNotificationTypes(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providerVar(w, r)
	if !ok {
		return
	}
	h.writeJSONResponse(w, http.StatusOK, models.NotificationCatalog(provider))
}

func (h *AdminHTTPHandler) HandleListCommandTypes(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providerVar(w, r)
	if !ok {
		return
	}
	h.writeJSONResponse(w, http.StatusOK, models.CommandCatalog(provider))
}

// HandleChangeServices enables (POST) or disables (DELETE) notifications or commands
func (h *AdminHTTPHandler) HandleChangeServices(serviceType models.ServiceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, provider, ok := h.integrationVars(w, r)
		if !ok {
			return
		}
		log.Printf("📋 %s %s %s request for guild %s received from %s", r.Method, provider, serviceType, guildID, r.RemoteAddr)

		var req ServiceNamesRequest
		if !h.decodeAndValidate(w, r, &req) {
			return
		}

		var changed []string
		var err error
		if r.Method == http.MethodDelete {
			changed, err = h.setupUseCase.DisableServices(r.Context(), guildID, provider, serviceType, req.Names)
		} else {
			changed, err = h.setupUseCase.EnableServices(r.Context(), guildID, provider, serviceType, req.Names)
		}
		if err != nil {
			h.writeErrorResponse(w, err)
			return
		}
		if changed == nil {
			changed = []string{}
		}
		h.writeJSONResponse(w, http.StatusOK, map[string][]string{"changed": changed})
	}
}

// SetupEndpoints registers all admin API endpoints behind the bearer key middleware
func (h *AdminHTTPHandler) SetupEndpoints(router *mux.Router, authMiddleware *middleware.AdminAuthMiddleware) {
	log.Printf("🚀 Registering admin API endpoints")
	const integrationPath = "/admin/guilds/{guildID}/integrations/{provider}"

	router.HandleFunc("/admin/guilds", authMiddleware.WithAuth(h.HandleOnboardGuild)).Methods("POST")
	router.HandleFunc("/admin/guilds/{guildID}", authMiddleware.WithAuth(h.HandleRemoveGuild)).Methods("DELETE")

	router.HandleFunc(integrationPath, authMiddleware.WithAuth(h.HandleGetSettings)).Methods("GET")
	router.HandleFunc(integrationPath, authMiddleware.WithAuth(h.HandleUpdateIntegration)).Methods("PATCH")
	router.HandleFunc(integrationPath+"/credentials", authMiddleware.WithAuth(h.HandleUpdateCredentials)).
		Methods("PUT")
	router.HandleFunc(integrationPath+"/credentials", authMiddleware.WithAuth(h.HandleClearCredentials)).
		Methods("DELETE")
	router.HandleFunc(integrationPath+"/notifications",
		authMiddleware.WithAuth(h.HandleChangeServices(models.ServiceTypeNotification))).Methods("POST", "DELETE")
	router.HandleFunc(integrationPath+"/commands",
		authMiddleware.WithAuth(h.HandleChangeServices(models.ServiceTypeCommand))).Methods("POST", "DELETE")

	router.HandleFunc("/admin/providers/{provider}/notifications",
		authMiddleware.WithAuth(h.HandleListNotificationTypes)).Methods("GET")
	router.HandleFunc("/admin/providers/{provider}/commands",
		authMiddleware.WithAuth(h.HandleListCommandTypes)).Methods("GET")

	log.Printf("✅ Admin API endpoints registered")
}

func (h *AdminHTTPHandler) integrationVars(w http.ResponseWriter, r *http.Request) (string, models.Provider, bool) {
	provider, ok := h.providerVar(w, r)
	if !ok {
		return "", "", false
	}
	return mux.Vars(r)["guildID"], provider, true
}

func (h *AdminHTTPHandler) providerVar(w http.ResponseWriter, r *http.Request) (models.Provider, bool) {
	raw := mux.Vars(r)["provider"]
	provider, ok := models.ParseProvider(raw)
	if !ok {
		log.Printf("❌ Unknown provider in path: %s", raw)
		h.writeJSONResponse(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown provider %q", raw)})
		return "", false
	}
	return provider, true
}

func (h *AdminHTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAdminBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		log.Printf("❌ Failed to parse request body: %v", err)
		h.writeJSONResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			h.writeJSONResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return false
		}
		fields := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		log.Printf("❌ Request validation failed: %s", strings.Join(fields, ", "))
		h.writeJSONResponse(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "details": fields})
		return false
	}
	return true
}

// writeErrorResponse maps domain errors to status codes. Messages of 5xx errors are not exposed.
func (h *AdminHTTPHandler) writeErrorResponse(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	var providerErr *core.ProviderStatusError
	switch {
	case errors.As(err, &providerErr) && providerErr.StatusCode < http.StatusInternalServerError &&
		providerErr.StatusCode != http.StatusTooManyRequests:
		status = http.StatusBadRequest
		message = fmt.Sprintf("%s rejected the request with status %d", providerErr.Provider, providerErr.StatusCode)
	case errors.Is(err, core.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrNotConfigured):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, core.ErrTransientProvider):
		status, message = http.StatusBadGateway, "provider unavailable, try again later"
	}

	if status >= http.StatusInternalServerError {
		log.Printf("❌ Admin request failed: %v", err)
	} else {
		log.Printf("⚠️ Admin request rejected (%d): %v", status, err)
	}
	h.writeJSONResponse(w, status, map[string]string{"error": message})
}

func (h *AdminHTTPHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("❌ Failed to encode JSON response: %v", err)
	}
}
