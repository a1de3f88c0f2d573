package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gymsession/internal/api"
	"github.com/dmitrijs2005/gymsession/internal/server/users"
)

func toAPIUser(u *users.User) *api.User {
	return &api.User{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

func (h *Handler) ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.PingResponse{Status: "OK"})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req api.SignInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.users.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, users.ErrInvalidCredentials) {
			h.logger.Error(r.Context(), "sign in failed", "error", err)
		}
		status, msg := mapDomainError(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, api.SignInResponse{User: toAPIUser(user), Token: token})
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req api.UpdateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Update(r.Context(), userID, users.UpdateInput{
		Name:        req.Name,
		Email:       req.Email,
		Avatar:      req.Avatar,
		Password:    req.Password,
		OldPassword: req.OldPassword,
	})
	if err != nil {
		status, msg := mapDomainError(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, toAPIUser(user))
}
