package handlers

import (
	"net/http"

	"github.com/portfolio-api/server/src/server/data"
)

type ExperienceHandler struct {
	Portfolio Portfolio
}

type experienceResponse struct {
	Position    string `json:"position"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	Logo        string `json:"logo"`
	Description string `json:"description"`
	Skills      string `json:"skills"`
	Duration    string `json:"duration"`
}

// List serves active experiences. total_duration=true returns the overall
// career length instead, and company_duration=true the per-company
// durations; total_duration wins when both are set.
func (h *ExperienceHandler) List(w http.ResponseWriter, r *http.Request) {
	switch {
	case queryFlag(r, "total_duration"):
		h.totalDuration(w, r)
	case queryFlag(r, "company_duration"):
		h.companyDurations(w, r)
	default:
		h.experiences(w, r)
	}
}

func (h *ExperienceHandler) experiences(w http.ResponseWriter, r *http.Request) {
	exps, err := h.Portfolio.Experiences(r.Context())
	if err != nil {
		writeInternalError(w, r, "Listing experiences failed", err)
		return
	}

	resp := []experienceResponse{}
	for _, e := range exps {
		if !e.Active {
			continue
		}
		resp = append(resp, experienceResponse{
			Position:    e.Position,
			Company:     e.Company,
			Location:    e.Location,
			Website:     e.Website,
			Logo:        e.Logo,
			Description: e.Description,
			Skills:      e.Skills,
			Duration:    e.Duration,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ExperienceHandler) totalDuration(w http.ResponseWriter, r *http.Request) {
	total, err := h.Portfolio.TotalExperience(r.Context())
	if err != nil {
		writeInternalError(w, r, "Computing total experience failed", err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}

func (h *ExperienceHandler) companyDurations(w http.ResponseWriter, r *http.Request) {
	durations, err := h.Portfolio.CompanyDurations(r.Context())
	if err != nil {
		writeInternalError(w, r, "Computing company durations failed", err)
		return
	}
	if durations == nil {
		durations = []data.CompanyDuration{}
	}
	writeJSON(w, http.StatusOK, durations)
}
