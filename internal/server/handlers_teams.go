package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pro-prioritet/tracker/internal/projects/domain"
)

func (h *Handler) listTeams(c *gin.Context) {
	userID := c.GetString("user_id")

	memberships, err := h.kv.GetByPrefix(c.Request.Context(), membershipPrefix(userID))
	if err != nil {
		h.log.Error("list_teams", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch teams"})
		return
	}

	teams := make([]domain.Team, 0, len(memberships))
	for _, m := range memberships {
		parts := strings.Split(m.Key, ":")
		teamID := parts[len(parts)-1]

		raw, found, err := h.kv.Get(c.Request.Context(), teamKey(teamID))
		if err != nil {
			h.log.Error("list_teams", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch teams"})
			return
		}
		if !found {
			continue // membership outlived the team
		}

		var team domain.Team
		if err := json.Unmarshal(raw, &team); err != nil {
			h.log.Errorf("list_teams", "team=%s malformed entry: %v", teamID, err)
			continue
		}
		team.IsOwner = team.OwnerID == userID
		team.IsMember = true
		teams = append(teams, team)
	}

	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

type createTeamReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) createTeam(c *gin.Context) {
	userID := c.GetString("user_id")
	userEmail := c.GetString("user_email")

	var req createTeamReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	team := domain.Team{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		OwnerID:     userID,
		OwnerEmail:  userEmail,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		MemberCount: 1,
		IsOwner:     true,
		IsMember:    true,
	}
	membership := domain.Membership{
		TeamID:   team.ID,
		Role:     "owner",
		JoinedAt: team.CreatedAt,
	}

	if err := h.putJSON(c, teamKey(team.ID), team); err != nil {
		h.log.Error("create_team", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create team"})
		return
	}
	if err := h.putJSON(c, membershipKey(userID, team.ID), membership); err != nil {
		h.log.Error("create_team", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create team"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"team": team})
}

type joinTeamReq struct {
	TeamID string `json:"teamId"`
}

func (h *Handler) joinTeam(c *gin.Context) {
	userID := c.GetString("user_id")

	var req joinTeamReq
	if err := c.ShouldBindJSON(&req); err != nil || req.TeamID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	raw, found, err := h.kv.Get(c.Request.Context(), teamKey(req.TeamID))
	if err != nil {
		h.log.Error("join_team", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join team"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}

	var team domain.Team
	if err := json.Unmarshal(raw, &team); err != nil {
		h.log.Errorf("join_team", "team=%s malformed entry: %v", req.TeamID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join team"})
		return
	}

	if _, exists, err := h.kv.Get(c.Request.Context(), membershipKey(userID, req.TeamID)); err != nil {
		h.log.Error("join_team", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join team"})
		return
	} else if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "you are already a member of this team"})
		return
	}

	membership := domain.Membership{
		TeamID:   req.TeamID,
		Role:     "member",
		JoinedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.putJSON(c, membershipKey(userID, req.TeamID), membership); err != nil {
		h.log.Error("join_team", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join team"})
		return
	}

	// A non-positive count is a malformed record; repair to the one known
	// existing member plus the joiner.
	team.MemberCount = max(team.MemberCount+1, 2)
	if err := h.putJSON(c, teamKey(req.TeamID), team); err != nil {
		h.log.Error("join_team", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join team"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
