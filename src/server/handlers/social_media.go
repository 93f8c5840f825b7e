package handlers

import (
	"net/http"
)

type SocialMediaHandler struct {
	Portfolio Portfolio
}

type socialMediaResponse struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

func (h *SocialMediaHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.Portfolio.SocialMedia(r.Context())
	if err != nil {
		writeInternalError(w, r, "Listing social media links failed", err)
		return
	}

	resp := []socialMediaResponse{}
	for _, l := range links {
		if l.Active {
			resp = append(resp, socialMediaResponse{Label: l.Label, URL: l.URL, Type: l.Type})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
