package handlers

import (
	"net/http"

	"saccos-core/internal/auth"
)

// actorFromRequest resolves the authenticated caller from the identity
// headers set by the gateway in front of this service.
func actorFromRequest(r *http.Request) (auth.Actor, bool) {
	actor := auth.Actor{
		ID:       r.Header.Get("X-Actor-ID"),
		TenantID: r.Header.Get("X-Tenant-ID"),
		Role:     auth.Role(r.Header.Get("X-Actor-Role")),
	}
	if actor.ID == "" || actor.TenantID == "" || actor.Role == "" {
		return auth.Actor{}, false
	}
	return actor, true
}

// requireActor rejects requests missing the identity headers.
func requireActor(w http.ResponseWriter, r *http.Request) (auth.Actor, bool) {
	actor, ok := actorFromRequest(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Missing identity headers")
	}
	return actor, ok
}
