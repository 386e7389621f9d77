// Package api is the MOTK REST server: accounts, organizations, projects and
// the shots, assets and tasks that belong to them.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kidandcat/motk/internal/auth"
	"github.com/kidandcat/motk/internal/db"
	"github.com/kidandcat/motk/internal/logging"
	"github.com/kidandcat/motk/internal/models"
)

type Handler struct {
	store *db.Store
	auth  *auth.Authenticator
}

func New(store *db.Store, authenticator *auth.Authenticator) *Handler {
	return &Handler{store: store, auth: authenticator}
}

// Routes returns the API mux. Everything except login and signup requires a
// bearer token.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", h.handleToken)
	mux.HandleFunc("POST /accounts/", h.handleSignup)

	private := http.NewServeMux()

	// Accounts
	private.HandleFunc("GET /accounts/me", h.handleMe)
	private.HandleFunc("GET /accounts/", h.handleListAccounts)
	private.HandleFunc("GET /users/", h.handleListAccounts)
	private.HandleFunc("POST /users/", auth.RequireRole("admin")(h.handleCreateUser))

	// Organizations
	private.HandleFunc("GET /organizations/", h.handleListOrganizations)
	private.HandleFunc("POST /organizations/", auth.RequireRole("admin")(h.handleCreateOrganization))

	// Projects
	private.HandleFunc("GET /projects/", h.handleListProjects)
	private.HandleFunc("POST /projects/", auth.RequireRole("admin", "manager")(h.handleCreateProject))
	private.HandleFunc("GET /projects/{id}", h.handleGetProject)
	private.HandleFunc("POST /projects/{id}/members", auth.RequireRole("admin", "manager")(h.handleCreateMember))
	private.HandleFunc("POST /projects/{id}/shots", h.handleCreateProjectShot)
	private.HandleFunc("POST /projects/{id}/assets", h.handleCreateProjectAsset)

	// Shots
	private.HandleFunc("GET /shots/", h.handleListShots)
	private.HandleFunc("POST /shots/", h.handleCreateShot)
	private.HandleFunc("PUT /shots/{id}", h.handleUpdateShot)
	private.HandleFunc("DELETE /shots/{id}", h.handleDeleteShot)

	// Assets
	private.HandleFunc("GET /assets/", h.handleListAssets)
	private.HandleFunc("POST /assets/", h.handleCreateAsset)

	// Tasks
	private.HandleFunc("GET /tasks/", h.handleListTasks)
	private.HandleFunc("GET /tasks/project/{id}", h.handleProjectTasks)
	private.HandleFunc("POST /tasks/", h.handleCreateTask)

	mux.Handle("/", h.auth.Middleware(private))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorBody{Detail: detail})
}

// writeStoreError maps store errors onto HTTP statuses; anything unexpected
// is logged and reported as a 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, what string, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, db.ErrConflict):
		writeError(w, http.StatusConflict, what+" already exists")
	default:
		logging.Logger.Errorf("Event ID: STORE_ERROR, Description: %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// currentAccount is only called behind auth.Middleware.
func currentAccount(r *http.Request) models.Account {
	acc, _ := auth.CurrentAccount(r.Context())
	return acc
}

// checkEnum fills an empty value with fallback and rejects anything outside
// allowed.
func checkEnum(w http.ResponseWriter, what string, v *string, fallback string, allowed []string) bool {
	if *v == "" {
		*v = fallback
	}
	if !slices.Contains(allowed, *v) {
		writeError(w, http.StatusBadRequest, "Invalid "+what+": must be one of "+strings.Join(allowed, ", "))
		return false
	}
	return true
}

func checkDates(w http.ResponseWriter, start, end *string) bool {
	var from, to time.Time
	for _, p := range []struct {
		v *string
		t *time.Time
	}{{start, &from}, {end, &to}} {
		if p.v == nil || *p.v == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, *p.v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Dates must use the YYYY-MM-DD format")
			return false
		}
		*p.t = t
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		writeError(w, http.StatusBadRequest, "End date must not be before start date")
		return false
	}
	return true
}

func required(w http.ResponseWriter, fields ...string) bool {
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			writeError(w, http.StatusBadRequest, fields[i]+" is required")
			return false
		}
	}
	return true
}
