package handlers

import (
	"fmt"
	"net/http"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/auth"
	apierrors "github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/errors"
)

// loginRequest: либо username+password, либо готовая пара access+refresh.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Remember bool   `json:"remember"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, fmt.Errorf("decode: %w", apierrors.ErrBadRequest))
		return
	}

	var (
		st  auth.State
		err error
	)
	switch {
	case in.Access != "":
		st, err = h.Session.LoginWithTokenPair(r.Context(), in.Access, in.Refresh, in.Remember)
	case in.Username != "" && in.Password != "":
		st, err = h.Session.LoginWithCredentials(r.Context(), in.Username, in.Password, in.Remember)
	default:
		err = fmt.Errorf("username and password or access are required: %w", apierrors.ErrBadRequest)
	}

	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Session.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Session.State())
}
