package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/portfolio-api/server/src/server/cache"
)

// Invalidator drops cached datasets; no keys means all of them.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// cacheResources maps the public resource names to dataset keys.
var cacheResources = map[string][]string{
	"projects":          {cache.KeyProjects},
	"education":         {cache.KeyFormations, cache.KeyCertifications},
	"experiences":       {cache.KeyExperiences},
	"company_durations": {cache.KeyCompanyDurations},
	"total_duration":    {cache.KeyTotalExperience},
	"social_links":      {cache.KeySocialMedia},
}

type CacheHandler struct {
	Cache Invalidator // nil when caching is disabled
}

func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.Cache == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	resource := r.URL.Query().Get("resource")
	var keys []string
	if resource != "" {
		var ok bool
		if keys, ok = cacheResources[resource]; !ok {
			writeError(w, http.StatusBadRequest, "unknown cache resource: "+resource)
			return
		}
	}

	if err := h.Cache.Invalidate(r.Context(), keys...); err != nil {
		writeInternalError(w, r, "Clearing cache failed", err)
		return
	}

	if resource == "" {
		resource = "all"
	}
	slog.Info("Cache cleared", "resource", resource)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "resource": resource})
}
