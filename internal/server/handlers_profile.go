package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pro-prioritet/tracker/internal/projects/domain"
)

func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	userEmail := c.GetString("user_email")
	userName := c.GetString("user_name")

	key := profileKey(userID)
	raw, found, err := h.kv.Get(c.Request.Context(), key)
	if err != nil {
		h.log.Error("get_profile", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
		return
	}

	var profile domain.Profile
	if found {
		if err := json.Unmarshal(raw, &profile); err != nil {
			h.log.Errorf("get_profile", "user=%s malformed entry, resetting: %v", userID, err)
			found = false
		}
	}
	if !found {
		profile = domain.DefaultProfile(userID, userEmail, userName)
		if err := h.putJSON(c, key, profile); err != nil {
			h.log.Error("get_profile", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *Handler) updateProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	userEmail := c.GetString("user_email")

	var profile domain.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	// Identity comes from the token; a profile update cannot move the record
	// or change the address.
	profile.ID = userID
	profile.Email = userEmail
	profile.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := h.putJSON(c, profileKey(userID), profile); err != nil {
		h.log.Error("update_profile", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
