package handlers

import (
	"net/http"
)

type ProjectHandler struct {
	Portfolio Portfolio
}

type projectResponse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Portfolio.Projects(r.Context())
	if err != nil {
		writeInternalError(w, r, "Listing projects failed", err)
		return
	}

	resp := []projectResponse{}
	for _, p := range projects {
		if !p.Active {
			continue
		}
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		resp = append(resp, projectResponse{
			Title:       p.Title,
			Description: p.Description,
			URL:         p.URL,
			Tags:        tags,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
