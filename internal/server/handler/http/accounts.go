// Package http provides HTTP handlers exposing the account and
// credential operations to host processes.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/k9mail/accountauth/internal/models"
)

// AccountService defines the account operations required by the HTTP
// handlers.
type AccountService interface {
	// CreateAccount registers a new account; false when the name is
	// taken or the request fails.
	CreateAccount(uuid, displayName string, password *string) bool
	// RemoveAccount removes the account; false on any failure.
	RemoveAccount(account models.Account) bool
	// FindAccountByUUID locates the account carrying uuid, nil when
	// there is not exactly one match.
	FindAccountByUUID(uuid string) *models.Account
	// FindAccountByName locates the account with the given name.
	FindAccountByName(name string) *models.Account
	// SetPassword updates the stored password; nil unsets it.
	SetPassword(account models.Account, password *string) bool
	// GetPassword returns the stored password, nil on failure or when
	// unset.
	GetPassword(account models.Account) *string
}

// AccountHandler handles HTTP requests for account management.
type AccountHandler struct {
	// AccountService performs the underlying account operations.
	AccountService AccountService
}

// CreateRequest represents the JSON payload for account creation.
type CreateRequest struct {
	// UUID is the stable account identifier; generated when empty.
	UUID string `json:"uuid"`
	// Name is the user-visible account name.
	Name string `json:"name"`
	// Password is the account secret; may be null.
	Password *string `json:"password"`
}

// accountResponse is the JSON shape of an account.
type accountResponse struct {
	UUID string `json:"uuid,omitempty"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Create handles account creation requests. It expects a JSON body
// with a non-empty "name"; a missing "uuid" is generated. Duplicate
// names are rejected with 409.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.UUID == "" {
		req.UUID = uuid.NewString()
	} else if err := uuid.Validate(req.UUID); err != nil {
		http.Error(w, "invalid uuid", http.StatusBadRequest)
		return
	}

	if !h.AccountService.CreateAccount(req.UUID, req.Name, req.Password) {
		http.Error(w, "account already exists", http.StatusConflict)
		return
	}

	account := h.AccountService.FindAccountByName(req.Name)
	if account == nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(accountResponse{
		UUID: req.UUID,
		Name: account.Name,
		Type: account.Type,
	})
}

// GetByUUID returns the account carrying the UUID path parameter.
func (h *AccountHandler) GetByUUID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	account := h.AccountService.FindAccountByUUID(id)
	if account == nil {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(accountResponse{
		UUID: id,
		Name: account.Name,
		Type: account.Type,
	})
}

// GetByName returns the account with the name path parameter.
func (h *AccountHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	account := h.AccountService.FindAccountByName(chi.URLParam(r, "name"))
	if account == nil {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(accountResponse{
		Name: account.Name,
		Type: account.Type,
	})
}

// Delete removes the account with the name path parameter.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account := h.AccountService.FindAccountByName(chi.URLParam(r, "name"))
	if account == nil {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	if !h.AccountService.RemoveAccount(*account) {
		http.Error(w, "failed to remove account", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PasswordRequest represents the JSON payload for a password update;
// a null password unsets the stored one.
type PasswordRequest struct {
	Password *string `json:"password"`
}

// SetPassword updates the password of the account with the name path
// parameter.
func (h *AccountHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	account := h.AccountService.FindAccountByName(chi.URLParam(r, "name"))
	if account == nil {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	var req PasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !h.AccountService.SetPassword(*account, req.Password) {
		http.Error(w, "failed to set password", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPassword returns the stored password of the account with the
// name path parameter; an unset password is returned as null.
func (h *AccountHandler) GetPassword(w http.ResponseWriter, r *http.Request) {
	account := h.AccountService.FindAccountByName(chi.URLParam(r, "name"))
	if account == nil {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(PasswordRequest{
		Password: h.AccountService.GetPassword(*account),
	})
}
