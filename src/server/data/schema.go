package data

import "time"

type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
	Active      bool     `json:"active"`
}

type Formation struct {
	Institution string `json:"institution"`
	Type        string `json:"type"`
	Course      string `json:"course"`
	Period      string `json:"period"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	Active      bool   `json:"active"`
}

type Certification struct {
	Name          string `json:"name"`
	Institution   string `json:"institution"`
	CredentialURL string `json:"credential_url"`
	Logo          string `json:"logo"`
	Active        bool   `json:"active"`
}

// Experience is a single job record. Duration and Period are derived from
// StartDate and EndDate by the repository; a nil EndDate means ongoing.
type Experience struct {
	Position    string     `json:"position"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Website     string     `json:"website"`
	Logo        string     `json:"logo"`
	Description string     `json:"description"`
	Skills      string     `json:"skills"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	ActualJob   bool       `json:"actual_job"`
	Duration    string     `json:"duration"`
	Period      string     `json:"period"`
	Active      bool       `json:"active"`
}

// Ongoing reports whether the job has no end yet.
func (e Experience) Ongoing() bool {
	return e.EndDate == nil || e.ActualJob
}

type SocialMedia struct {
	Label  string `json:"label"`
	URL    string `json:"url"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

type CompanyDuration struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
}

type TotalDuration struct {
	TotalDuration string `json:"total_duration"`
}

// Portfolio bundles every source dataset, as loaded from seed files.
type Portfolio struct {
	Projects       []Project
	Formations     []Formation
	Certifications []Certification
	Experiences    []Experience
	SocialMedia    []SocialMedia
}
