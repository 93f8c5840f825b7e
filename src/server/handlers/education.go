package handlers

import (
	"net/http"
)

type EducationHandler struct {
	Portfolio Portfolio
}

type formationResponse struct {
	Institution string `json:"institution"`
	Type        string `json:"type"`
	Course      string `json:"course"`
	Period      string `json:"period"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
}

type certificationResponse struct {
	Name          string `json:"name"`
	Institution   string `json:"institution"`
	CredentialURL string `json:"credential_url"`
	Logo          string `json:"logo"`
}

type educationResponse struct {
	Formations     []formationResponse     `json:"formations"`
	Certifications []certificationResponse `json:"certifications"`
}

func (h *EducationHandler) List(w http.ResponseWriter, r *http.Request) {
	formations, err := h.Portfolio.Formations(r.Context())
	if err != nil {
		writeInternalError(w, r, "Listing formations failed", err)
		return
	}
	certs, err := h.Portfolio.Certifications(r.Context())
	if err != nil {
		writeInternalError(w, r, "Listing certifications failed", err)
		return
	}

	resp := educationResponse{
		Formations:     []formationResponse{},
		Certifications: []certificationResponse{},
	}
	for _, f := range formations {
		if f.Active {
			resp.Formations = append(resp.Formations, formationResponse{
				Institution: f.Institution,
				Type:        f.Type,
				Course:      f.Course,
				Period:      f.Period,
				Description: f.Description,
				Logo:        f.Logo,
			})
		}
	}
	for _, c := range certs {
		if c.Active {
			resp.Certifications = append(resp.Certifications, certificationResponse{
				Name:          c.Name,
				Institution:   c.Institution,
				CredentialURL: c.CredentialURL,
				Logo:          c.Logo,
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
