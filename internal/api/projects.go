package api

import (
	"net/http"

	"github.com/kidandcat/motk/internal/logging"
	"github.com/kidandcat/motk/internal/models"
)

// Organizations

func (h *Handler) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	acc := currentAccount(r)
	if acc.AccountType != "admin" {
		org, err := h.store.GetOrganization(r.Context(), acc.OrganizationID)
		if err != nil {
			writeStoreError(w, r, "Organization", err)
			return
		}
		writeJSON(w, http.StatusOK, []models.Organization{org})
		return
	}
	orgs, err := h.store.ListOrganizations(r.Context())
	if err != nil {
		writeStoreError(w, r, "Organization", err)
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}

func (h *Handler) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var in models.OrganizationCreate
	if !decode(w, r, &in) {
		return
	}
	if !required(w, "name", in.Name) || !checkEnum(w, "organization status", &in.Status, "active", models.OrganizationStatuses) {
		return
	}
	org, err := h.store.CreateOrganization(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, "Organization", err)
		return
	}
	logging.Logger.Infof("Event ID: ORGANIZATION_CREATED, Description: %q", org.Name)
	writeJSON(w, http.StatusCreated, org)
}

// Projects

// visibleProjects is every project for admins, the organization's projects
// for managers and the member projects for everyone else.
func (h *Handler) visibleProjects(r *http.Request) ([]models.Project, error) {
	acc := currentAccount(r)
	switch acc.AccountType {
	case "admin":
		return h.store.ListProjects(r.Context())
	case "manager":
		return h.store.ListProjectsByOrganization(r.Context(), acc.OrganizationID)
	}
	return h.store.ListProjectsForAccount(r.Context(), acc.ID)
}

func (h *Handler) visibleProjectIDs(r *http.Request) ([]int64, error) {
	projects, err := h.visibleProjects(r)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	return ids, nil
}

// projectAccess loads project id and checks the caller may see it. On false
// the response has been written.
func (h *Handler) projectAccess(w http.ResponseWriter, r *http.Request, id int64) (models.Project, bool) {
	p, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "Project", err)
		return p, false
	}
	acc := currentAccount(r)
	if acc.AccountType == "admin" || (acc.AccountType == "manager" && acc.OrganizationID == p.OrganizationID) {
		return p, true
	}
	ok, err := h.store.IsMember(r.Context(), p.ID, acc.ID)
	if err != nil {
		writeStoreError(w, r, "Project", err)
		return p, false
	}
	if !ok {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return p, false
	}
	return p, true
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.visibleProjects(r)
	if err != nil {
		writeStoreError(w, r, "Project", err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in models.ProjectCreate
	if !decode(w, r, &in) {
		return
	}
	if !required(w, "name", in.Name) ||
		!checkEnum(w, "project status", &in.Status, "active", models.ProjectStatuses) ||
		!checkDates(w, in.StartDate, in.EndDate) {
		return
	}
	acc := currentAccount(r)
	if acc.AccountType != "admin" && in.OrganizationID != acc.OrganizationID {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	if _, err := h.store.GetOrganization(r.Context(), in.OrganizationID); err != nil {
		writeStoreError(w, r, "Organization", err)
		return
	}
	p, err := h.store.CreateProject(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, "Project", err)
		return
	}
	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: %q (org %d)", p.Name, p.OrganizationID)
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, ok := h.projectAccess(w, r, id); !ok {
		return
	}
	d, err := h.store.ProjectDetails(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "Project", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Members

func (h *Handler) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, ok := h.projectAccess(w, r, id); !ok {
		return
	}
	var in models.ProjectMemberCreate
	if !decode(w, r, &in) || !required(w, "display_name", in.DisplayName) {
		return
	}
	if in.Department == "" {
		in.Department = "Unassigned"
	}
	if in.Role == "" {
		in.Role = "Member"
	}
	if in.AccountID != nil {
		if _, err := h.store.GetAccount(r.Context(), *in.AccountID); err != nil {
			writeStoreError(w, r, "Account", err)
			return
		}
	}
	m, err := h.store.CreateMember(r.Context(), id, in)
	if err != nil {
		writeStoreError(w, r, "Project member", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) handleCreateProjectShot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.ShotCreate
	if !decode(w, r, &in) {
		return
	}
	in.ProjectID = id
	h.createShot(w, r, in)
}

func (h *Handler) handleCreateProjectAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.AssetCreate
	if !decode(w, r, &in) {
		return
	}
	in.ProjectID = id
	h.createAsset(w, r, in)
}
