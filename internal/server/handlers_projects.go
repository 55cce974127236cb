package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pro-prioritet/tracker/internal/projects/domain"
)

func (h *Handler) listProjects(c *gin.Context) {
	userID := c.GetString("user_id")

	entries, err := h.kv.GetByPrefix(c.Request.Context(), projectPrefix(userID))
	if err != nil {
		h.log.Error("list_projects", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch projects"})
		return
	}

	projects := make([]domain.Project, 0, len(entries))
	for _, e := range entries {
		var p domain.Project
		if err := json.Unmarshal(e.Value, &p); err != nil {
			// Skip malformed entries rather than failing the whole list.
			h.log.Errorf("list_projects", "key=%s malformed entry: %v", e.Key, err)
			continue
		}
		projects = append(projects, p)
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *Handler) createProject(c *gin.Context) {
	userID := c.GetString("user_id")

	var draft domain.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := draft.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft = draft.Normalized()

	project := domain.Project{
		ID:          uuid.NewString(),
		Title:       draft.Title,
		Description: draft.Description,
		Status:      draft.Status,
		Priority:    draft.Priority,
		Progress:    draft.Progress,
		Assignee:    draft.Assignee,
		Manager:     draft.Manager,
		Deadline:    draft.Deadline,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		UserID:      userID,
	}

	if err := h.putJSON(c, projectKey(userID, project.ID), project); err != nil {
		h.log.Error("create_project", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (h *Handler) updateProject(c *gin.Context) {
	userID := c.GetString("user_id")
	projectID := c.Param("id")

	var p domain.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	// Identity fields are pinned: the path and token win over the body.
	p.ID = projectID
	p.UserID = userID
	if err := p.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := projectKey(userID, projectID)
	raw, found, err := h.kv.Get(c.Request.Context(), key)
	if err != nil {
		h.log.Error("update_project", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	var existing domain.Project
	if err := json.Unmarshal(raw, &existing); err == nil {
		p.CreatedAt = existing.CreatedAt // immutable
	}
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := h.putJSON(c, key, p); err != nil {
		h.log.Error("update_project", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *Handler) deleteProject(c *gin.Context) {
	userID := c.GetString("user_id")
	projectID := c.Param("id")

	if err := h.kv.Del(c.Request.Context(), projectKey(userID, projectID)); err != nil {
		h.log.Error("delete_project", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) putJSON(c *gin.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return h.kv.Set(c.Request.Context(), key, raw)
}
