package api

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/kidandcat/motk/internal/logging"
	"github.com/kidandcat/motk/internal/models"
)

// Shots

func (h *Handler) handleListShots(w http.ResponseWriter, r *http.Request) {
	ids, err := h.visibleProjectIDs(r)
	if err != nil {
		writeStoreError(w, r, "Project", err)
		return
	}
	shots, err := h.store.ListShots(r.Context(), ids)
	if err != nil {
		writeStoreError(w, r, "Shot", err)
		return
	}
	writeJSON(w, http.StatusOK, shots)
}

func (h *Handler) handleCreateShot(w http.ResponseWriter, r *http.Request) {
	var in models.ShotCreate
	if !decode(w, r, &in) {
		return
	}
	h.createShot(w, r, in)
}

func (h *Handler) createShot(w http.ResponseWriter, r *http.Request, in models.ShotCreate) {
	if !required(w, "name", in.Name) || !checkEnum(w, "shot status", &in.Status, "pending", models.ShotStatuses) {
		return
	}
	if _, ok := h.projectAccess(w, r, in.ProjectID); !ok {
		return
	}
	sh, err := h.store.CreateShot(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, "Shot", err)
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

// handleUpdateShot applies a partial update; absent fields keep their value.
func (h *Handler) handleUpdateShot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sh, err := h.store.GetShot(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "Shot", err)
		return
	}
	if _, ok := h.projectAccess(w, r, sh.ProjectID); !ok {
		return
	}

	var upd models.ShotUpdate
	if !decode(w, r, &upd) {
		return
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if upd.Status != nil && !slices.Contains(models.ShotStatuses, *upd.Status) {
		writeError(w, http.StatusBadRequest, "Invalid shot status")
		return
	}

	sh, err = h.store.UpdateShot(r.Context(), id, upd)
	if err != nil {
		writeStoreError(w, r, "Shot", err)
		return
	}
	logging.Logger.Debugf("Event ID: SHOT_UPDATED, Description: shot %d", id)
	writeJSON(w, http.StatusOK, sh)
}

func (h *Handler) handleDeleteShot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sh, err := h.store.GetShot(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "Shot", err)
		return
	}
	if _, ok := h.projectAccess(w, r, sh.ProjectID); !ok {
		return
	}
	if err := h.store.DeleteShot(r.Context(), id); err != nil {
		writeStoreError(w, r, "Shot", err)
		return
	}
	logging.Logger.Infof("Event ID: SHOT_DELETED, Description: shot %d of project %d", id, sh.ProjectID)
	w.WriteHeader(http.StatusNoContent)
}

// Assets

func (h *Handler) handleListAssets(w http.ResponseWriter, r *http.Request) {
	ids, err := h.visibleProjectIDs(r)
	if err != nil {
		writeStoreError(w, r, "Project", err)
		return
	}
	assets, err := h.store.ListAssets(r.Context(), ids)
	if err != nil {
		writeStoreError(w, r, "Asset", err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

func (h *Handler) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var in models.AssetCreate
	if !decode(w, r, &in) {
		return
	}
	h.createAsset(w, r, in)
}

func (h *Handler) createAsset(w http.ResponseWriter, r *http.Request, in models.AssetCreate) {
	if !required(w, "name", in.Name, "asset_type", in.AssetType) ||
		!checkEnum(w, "asset status", &in.Status, "pending", models.ShotStatuses) {
		return
	}
	if _, ok := h.projectAccess(w, r, in.ProjectID); !ok {
		return
	}
	a, err := h.store.CreateAsset(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, "Asset", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Tasks

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ids, err := h.visibleProjectIDs(r)
	if err != nil {
		writeStoreError(w, r, "Project", err)
		return
	}
	tasks, err := h.store.ListTasks(r.Context(), ids)
	if err != nil {
		writeStoreError(w, r, "Task", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) handleProjectTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, ok := h.projectAccess(w, r, id); !ok {
		return
	}
	tasks, err := h.store.ListTasks(r.Context(), []int64{id})
	if err != nil {
		writeStoreError(w, r, "Task", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// handleCreateTask links the task to exactly one shot or asset, assigns it to
// a member of that parent's project and records its dependencies.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in models.TaskCreate
	if !decode(w, r, &in) {
		return
	}
	if !required(w, "name", in.Name) || !checkEnum(w, "task status", &in.Status, "todo", models.TaskStatuses) {
		return
	}
	if (in.ShotID == nil) == (in.AssetID == nil) {
		writeError(w, http.StatusBadRequest, "Task must be linked to a Shot or an Asset.")
		return
	}

	var projectID int64
	if in.ShotID != nil {
		sh, err := h.store.GetShot(r.Context(), *in.ShotID)
		if err != nil {
			writeStoreError(w, r, "Shot", err)
			return
		}
		projectID = sh.ProjectID
	} else {
		a, err := h.store.GetAsset(r.Context(), *in.AssetID)
		if err != nil {
			writeStoreError(w, r, "Asset", err)
			return
		}
		projectID = a.ProjectID
	}
	if _, ok := h.projectAccess(w, r, projectID); !ok {
		return
	}

	member, err := h.store.GetMember(r.Context(), in.AssignedToID)
	if err != nil {
		writeStoreError(w, r, "Assigned ProjectMember", err)
		return
	}
	if member.ProjectID != projectID {
		writeError(w, http.StatusBadRequest, "Cannot assign a task to a member from a different project.")
		return
	}

	in.Dependencies = dedupe(in.Dependencies)
	missing, err := h.store.MissingTasks(r.Context(), in.Dependencies)
	if err != nil {
		writeStoreError(w, r, "Task", err)
		return
	}
	if len(missing) > 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Dependency tasks not found: %v", missing))
		return
	}

	t, err := h.store.CreateTask(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, "Task", err)
		return
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: task %d in project %d", t.ID, projectID)
	writeJSON(w, http.StatusCreated, t)
}

func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
