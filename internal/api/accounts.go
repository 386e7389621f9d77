package api

import (
	"net/http"

	"github.com/kidandcat/motk/internal/auth"
	"github.com/kidandcat/motk/internal/logging"
	"github.com/kidandcat/motk/internal/models"
)

// handleToken is the OAuth2 password flow: a form-encoded username and
// password in, a bearer token out.
func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	username := r.PostForm.Get("username")
	token, err := h.auth.Login(r.Context(), username, r.PostForm.Get("password"))
	if err != nil {
		logging.Logger.Infof("Event ID: LOGIN_FAILED, Description: account %q", username)
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	logging.Logger.Infof("Event ID: LOGIN_OK, Description: account %q", username)
	writeJSON(w, http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentAccount(r))
}

// handleSignup is open registration. It cannot mint admins or managers.
func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in models.AccountCreate
	if !decode(w, r, &in) {
		return
	}
	if in.AccountType == "admin" || in.AccountType == "manager" {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	h.createAccount(w, r, in)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.AccountCreate
	if !decode(w, r, &in) {
		return
	}
	h.createAccount(w, r, in)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request, in models.AccountCreate) {
	if !required(w, "account_name", in.AccountName, "display_name", in.DisplayName, "password", in.Password) {
		return
	}
	if !checkEnum(w, "account type", &in.AccountType, "artist", models.AccountTypes) {
		return
	}
	if _, err := h.store.GetOrganization(r.Context(), in.OrganizationID); err != nil {
		writeStoreError(w, r, "Organization", err)
		return
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		writeStoreError(w, r, "Account", err)
		return
	}
	acc, err := h.store.CreateAccount(r.Context(), in, hash)
	if err != nil {
		writeStoreError(w, r, "Account", err)
		return
	}
	logging.Logger.Infof("Event ID: ACCOUNT_CREATED, Description: %q (%s)", acc.AccountName, acc.AccountType)
	writeJSON(w, http.StatusCreated, acc)
}

// handleListAccounts shows admins every account and everyone else the
// accounts of their own organization.
func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	acc := currentAccount(r)
	org := acc.OrganizationID
	if acc.AccountType == "admin" {
		org = 0
	}
	accounts, err := h.store.ListAccounts(r.Context(), org)
	if err != nil {
		writeStoreError(w, r, "Account", err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}
