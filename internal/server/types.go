// Package server implements the kv-backed HTTP API consumed by the client
// core: project/team/profile CRUD plus signup and health, bearer-authorized
// through the auth provider.
package server

import (
	"fmt"

	"github.com/pro-prioritet/tracker/internal/auth"
	"github.com/pro-prioritet/tracker/internal/kvstore"
	"github.com/pro-prioritet/tracker/internal/logx"
)

// Handler bundles the dependencies for the API endpoints.
type Handler struct {
	kv   kvstore.Store
	auth auth.Provider
	log  *logx.Logger
}

func New(kv kvstore.Store, provider auth.Provider) *Handler {
	return &Handler{kv: kv, auth: provider, log: logx.New("server")}
}

// Key layout, shared with the original deployment's kv table.
func projectKey(userID, projectID string) string {
	return fmt.Sprintf("user:%s:projects:%s", userID, projectID)
}

func projectPrefix(userID string) string {
	return fmt.Sprintf("user:%s:projects:", userID)
}

func teamKey(teamID string) string {
	return fmt.Sprintf("team:%s", teamID)
}

func membershipKey(userID, teamID string) string {
	return fmt.Sprintf("user:%s:teams:%s", userID, teamID)
}

func membershipPrefix(userID string) string {
	return fmt.Sprintf("user:%s:teams:", userID)
}

func profileKey(userID string) string {
	return fmt.Sprintf("user:%s:profile", userID)
}
