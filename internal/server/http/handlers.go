package http

import (
	"encoding/base64"
	"net/http"

	"github.com/voxgate/voxgate/internal/logging"
	"github.com/voxgate/voxgate/internal/server/auth"
	"github.com/voxgate/voxgate/internal/server/models"
	"github.com/voxgate/voxgate/internal/server/services"
)

// Handler serves the JSON API.
type Handler struct {
	accounts *services.AccountService
	voice    *services.VoiceService
	logger   logging.Logger
}

func NewHandler(as *services.AccountService, vs *services.VoiceService, logger logging.Logger) *Handler {
	return &Handler{accounts: as, voice: vs, logger: logger.With("module", "http")}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, expected := errorResponse(err)
	if !expected {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, msg)
}

// account returns the caller set by Authenticate.
func (h *Handler) account(r *http.Request) *models.Account {
	a, _ := auth.AccountFromContext(r.Context())
	return a
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	account, token, err := h.accounts.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"id":      account.ID,
		"token":   token,
		"apiKey":  account.APIKey,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	account, token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"success": true, "token": token, "apiKey": account.APIKey})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": h.account(r)})
}

func (h *Handler) RotateAPIKey(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.RotateAPIKey(r.Context(), h.account(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "apiKey": account.APIKey})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), h.account(r).ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true})
}

type generateRequest struct {
	Text      string `json:"text"`
	Voice     string `json:"voice"`
	Language  string `json:"language"`
	ProjectID string `json:"projectId"`
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.voice.Generate(r.Context(), h.account(r), services.GenerateRequest{
		Text:      req.Text,
		Voice:     req.Voice,
		Language:  req.Language,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	body := envelope{
		"success":             true,
		"audioContent":        base64.StdEncoding.EncodeToString(res.Audio),
		"contentType":         res.ContentType,
		"charactersUsed":      res.CharactersUsed,
		"charactersRemaining": res.CharactersRemaining,
	}
	if res.Sample != nil {
		body["sample"] = res.Sample
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	account, err := h.voice.Usage(r.Context(), h.account(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":             true,
		"tier":                account.Tier,
		"charactersUsed":      account.CharactersUsed,
		"charactersLimit":     account.CharactersLimit,
		"charactersRemaining": account.Remaining(),
	})
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.voice.ListProjects(r.Context(), h.account(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "count": len(list), "data": list})
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	p, err := h.voice.CreateProject(r.Context(), h.account(r).ID, req.Name, req.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"success": true, "data": p})
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
