// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/Projet-EDP-Iris/irisBackend/internal/auth"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type registerResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type updateRequest struct {
	Email                *string `json:"email,omitempty"`
	Password             *string `json:"password,omitempty"`
	Role                 *string `json:"role,omitempty"`
	HasSubscription      *bool   `json:"has_subscription,omitempty"`
	BankAccountID        *string `json:"bank_account_id,omitempty"`
	OAuthProvider        *string `json:"oauth_provider,omitempty"`
	RequirePasswordReset *bool   `json:"require_password_reset,omitempty"`
}

// accountResponse is the account profile shape. The password hash is never
// part of any response.
type accountResponse struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Role                 string    `json:"role"`
	HasSubscription      bool      `json:"has_subscription"`
	BankAccountID        *string   `json:"bank_account_id"`
	OAuthProvider        *string   `json:"oauth_provider"`
	RequirePasswordReset bool      `json:"require_password_reset"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func toAccountResponse(a *auth.Account) accountResponse {
	return accountResponse{
		ID:                   a.ID.String(),
		Email:                a.Email,
		Role:                 a.Role,
		HasSubscription:      a.HasSubscription,
		BankAccountID:        a.BankAccountID,
		OAuthProvider:        a.OAuthProvider,
		RequirePasswordReset: a.RequirePasswordReset,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "👋 Welcome to the Iris API",
		"status":  "online",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, ErrBadRequest)
		return
	}

	account, err := s.service.Register(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		ID:    account.ID.String(),
		Email: account.Email,
		Role:  account.Role,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, ErrBadRequest)
		return
	}

	token, err := s.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.metrics.RecordLogin("failure")
		writeError(w, s.logger, err)
		return
	}

	s.metrics.RecordLogin("success")
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, actor *auth.Account) {
	writeJSON(w, http.StatusOK, toAccountResponse(actor))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, _ *auth.Account) {
	id, err := parseAccountID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	account, err := s.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, actor *auth.Account) {
	id, err := parseAccountID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, ErrBadRequest)
		return
	}

	account, err := s.service.Update(r.Context(), actor, id, auth.AccountChanges{
		Email:                req.Email,
		Password:             req.Password,
		Role:                 req.Role,
		HasSubscription:      req.HasSubscription,
		BankAccountID:        req.BankAccountID,
		OAuthProvider:        req.OAuthProvider,
		RequirePasswordReset: req.RequirePasswordReset,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, actor *auth.Account) {
	id, err := parseAccountID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.service.Delete(r.Context(), actor, id); err != nil {
		writeError(w, s.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseAccountID extracts the {id} path value. An unparseable ID cannot
// name an existing account, so it reports not-found rather than a
// validation error.
func parseAccountID(r *http.Request) (ulid.ULID, error) {
	id, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		return ulid.ULID{}, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", r.PathValue("id")).
			Wrap(auth.ErrNotFound)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // response write failure is not recoverable
	json.NewEncoder(w).Encode(body)
}
