package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/portfolio-api/server/src/server/data"
)

// Seed file names inside a seed directory. Missing files load as empty.
const (
	ProjectsFile       = "projects.json"
	FormationsFile     = "formations.json"
	CertificationsFile = "certifications.json"
	ExperiencesFile    = "experiences.json"
	SocialMediaFile    = "social_media.json"
)

type seedExperience struct {
	Position    string `json:"position"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	Logo        string `json:"logo"`
	Description string `json:"description"`
	Skills      string `json:"skills"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	ActualJob   bool   `json:"actual_job"`
	Active      *bool  `json:"active"`
}

// LoadSeed reads a portfolio from the JSON files in dir.
func LoadSeed(dir string) (data.Portfolio, error) {
	var p data.Portfolio
	if _, err := os.Stat(dir); err != nil {
		return p, fmt.Errorf("reading seed dir: %w", err)
	}

	if err := readSeedFile(dir, ProjectsFile, &p.Projects); err != nil {
		return p, err
	}
	if err := readSeedFile(dir, FormationsFile, &p.Formations); err != nil {
		return p, err
	}
	if err := readSeedFile(dir, CertificationsFile, &p.Certifications); err != nil {
		return p, err
	}
	if err := readSeedFile(dir, SocialMediaFile, &p.SocialMedia); err != nil {
		return p, err
	}

	var raw []seedExperience
	if err := readSeedFile(dir, ExperiencesFile, &raw); err != nil {
		return p, err
	}
	for i, r := range raw {
		e, err := r.experience()
		if err != nil {
			return p, fmt.Errorf("parsing %s entry %d: %w", ExperiencesFile, i, err)
		}
		p.Experiences = append(p.Experiences, e)
	}
	return p, nil
}

func readSeedFile(dir, name string, v any) error {
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (r seedExperience) experience() (data.Experience, error) {
	start, err := parseSeedDate(r.StartDate)
	if err != nil {
		return data.Experience{}, fmt.Errorf("start_date: %w", err)
	}
	e := data.Experience{
		Position:    r.Position,
		Company:     r.Company,
		Location:    r.Location,
		Website:     r.Website,
		Logo:        r.Logo,
		Description: r.Description,
		Skills:      r.Skills,
		StartDate:   start,
		ActualJob:   r.ActualJob,
		Active:      r.Active == nil || *r.Active,
	}
	if r.EndDate != "" {
		end, err := parseSeedDate(r.EndDate)
		if err != nil {
			return data.Experience{}, fmt.Errorf("end_date: %w", err)
		}
		e.EndDate = &end
	}
	return e, nil
}

func parseSeedDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
