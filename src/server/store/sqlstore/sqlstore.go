// Package sqlstore implements store.Backend over database/sql. The postgres
// and sqlite packages open the connection and hand it over.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/portfolio-api/server/src/server/data"
	"github.com/portfolio-api/server/src/server/store"
	"github.com/portfolio-api/server/src/server/store/migrations"
)

const dateLayout = "2006-01-02"

type Store struct {
	db      *sql.DB
	dialect migrations.Dialect
	dsn     string
	clock   clockwork.Clock
}

func New(db *sql.DB, dialect migrations.Dialect, dsn string, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{db: db, dialect: dialect, dsn: dsn, clock: clock}
}

// Migrate brings the schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	return migrations.Up(ctx, s.dialect, s.dsn)
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return store.Classify("ping", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(q string) string {
	if s.dialect != migrations.Postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) Projects(ctx context.Context) ([]data.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title, description, url, tags, active FROM projects ORDER BY id`)
	if err != nil {
		slog.Error("Projects query failed", "error", err)
		return nil, store.Classify("listing projects", err)
	}
	defer rows.Close()

	projects := []data.Project{}
	for rows.Next() {
		var p data.Project
		var tags jsonText
		if err := rows.Scan(&p.Title, &p.Description, &p.URL, &tags, &p.Active); err != nil {
			return nil, store.Classify("scanning project", err)
		}
		if err := tags.decode(&p.Tags); err != nil {
			return nil, store.Classify("decoding project tags", err)
		}
		projects = append(projects, p)
	}
	return projects, store.Classify("listing projects", rows.Err())
}

func (s *Store) Formations(ctx context.Context) ([]data.Formation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT institution, type, course, period, description, logo, active FROM formations ORDER BY id`)
	if err != nil {
		slog.Error("Formations query failed", "error", err)
		return nil, store.Classify("listing formations", err)
	}
	defer rows.Close()

	formations := []data.Formation{}
	for rows.Next() {
		var f data.Formation
		if err := rows.Scan(&f.Institution, &f.Type, &f.Course, &f.Period, &f.Description, &f.Logo, &f.Active); err != nil {
			return nil, store.Classify("scanning formation", err)
		}
		formations = append(formations, f)
	}
	return formations, store.Classify("listing formations", rows.Err())
}

func (s *Store) Certifications(ctx context.Context) ([]data.Certification, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, institution, credential_url, logo, active FROM certifications ORDER BY id`)
	if err != nil {
		slog.Error("Certifications query failed", "error", err)
		return nil, store.Classify("listing certifications", err)
	}
	defer rows.Close()

	certs := []data.Certification{}
	for rows.Next() {
		var c data.Certification
		if err := rows.Scan(&c.Name, &c.Institution, &c.CredentialURL, &c.Logo, &c.Active); err != nil {
			return nil, store.Classify("scanning certification", err)
		}
		certs = append(certs, c)
	}
	return certs, store.Classify("listing certifications", rows.Err())
}

func (s *Store) SocialMedia(ctx context.Context) ([]data.SocialMedia, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, url, type, active FROM social_media ORDER BY id`)
	if err != nil {
		slog.Error("SocialMedia query failed", "error", err)
		return nil, store.Classify("listing social media", err)
	}
	defer rows.Close()

	links := []data.SocialMedia{}
	for rows.Next() {
		var l data.SocialMedia
		if err := rows.Scan(&l.Label, &l.URL, &l.Type, &l.Active); err != nil {
			return nil, store.Classify("scanning social media", err)
		}
		links = append(links, l)
	}
	return links, store.Classify("listing social media", rows.Err())
}

// rawExperiences returns experiences without derived fields, most recent first.
func (s *Store) rawExperiences(ctx context.Context) ([]data.Experience, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, company, location, website, logo, description, skills, start_date, end_date, actual_job, active
		 FROM experiences ORDER BY start_date DESC, id`)
	if err != nil {
		slog.Error("Experiences query failed", "error", err)
		return nil, store.Classify("listing experiences", err)
	}
	defer rows.Close()

	exps := []data.Experience{}
	for rows.Next() {
		var e data.Experience
		var start, end dateValue
		if err := rows.Scan(&e.Position, &e.Company, &e.Location, &e.Website, &e.Logo, &e.Description, &e.Skills,
			&start, &end, &e.ActualJob, &e.Active); err != nil {
			return nil, store.Classify("scanning experience", err)
		}
		if start.t == nil {
			return nil, store.Classify("scanning experience", fmt.Errorf("missing start_date for %s", e.Company))
		}
		e.StartDate = *start.t
		e.EndDate = end.t
		exps = append(exps, e)
	}
	return exps, store.Classify("listing experiences", rows.Err())
}

func (s *Store) Experiences(ctx context.Context) ([]data.Experience, error) {
	exps, err := s.rawExperiences(ctx)
	if err != nil {
		return nil, err
	}
	return data.Derive(exps, s.clock.Now()), nil
}

func (s *Store) CompanyDurations(ctx context.Context) ([]data.CompanyDuration, error) {
	exps, err := s.rawExperiences(ctx)
	if err != nil {
		return nil, err
	}
	return data.CompanyDurations(exps, s.clock.Now()), nil
}

func (s *Store) TotalExperience(ctx context.Context) (data.TotalDuration, error) {
	exps, err := s.rawExperiences(ctx)
	if err != nil {
		return data.TotalDuration{}, err
	}
	return data.TotalExperience(exps, s.clock.Now()), nil
}

// Seed replaces every table's rows with p in one transaction.
func (s *Store) Seed(ctx context.Context, p data.Portfolio) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Classify("beginning seed", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"projects", "formations", "certifications", "experiences", "social_media"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return store.Classify("clearing "+table, err)
		}
	}

	for _, pr := range p.Projects {
		tags, err := json.Marshal(nonNil(pr.Tags))
		if err != nil {
			return fmt.Errorf("encoding tags for %s: %w", pr.Title, err)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO projects (title, description, url, tags, active) VALUES (?, ?, ?, ?, ?)`),
			pr.Title, pr.Description, pr.URL, string(tags), pr.Active); err != nil {
			return store.Classify("inserting project", err)
		}
	}
	for _, f := range p.Formations {
		if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO formations (institution, type, course, period, description, logo, active) VALUES (?, ?, ?, ?, ?, ?, ?)`),
			f.Institution, f.Type, f.Course, f.Period, f.Description, f.Logo, f.Active); err != nil {
			return store.Classify("inserting formation", err)
		}
	}
	for _, c := range p.Certifications {
		if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO certifications (name, institution, credential_url, logo, active) VALUES (?, ?, ?, ?, ?)`),
			c.Name, c.Institution, c.CredentialURL, c.Logo, c.Active); err != nil {
			return store.Classify("inserting certification", err)
		}
	}
	for _, e := range p.Experiences {
		var end any
		if e.EndDate != nil {
			end = e.EndDate.Format(dateLayout)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO experiences (position, company, location, website, logo, description, skills, start_date, end_date, actual_job, active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			e.Position, e.Company, e.Location, e.Website, e.Logo, e.Description, e.Skills,
			e.StartDate.Format(dateLayout), end, e.ActualJob, e.Active); err != nil {
			return store.Classify("inserting experience", err)
		}
	}
	for _, l := range p.SocialMedia {
		if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO social_media (label, url, type, active) VALUES (?, ?, ?, ?)`),
			l.Label, l.URL, l.Type, l.Active); err != nil {
			return store.Classify("inserting social media", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return store.Classify("committing seed", err)
	}
	slog.Info("Portfolio seeded", "dialect", s.dialect,
		"projects", len(p.Projects), "experiences", len(p.Experiences))
	return nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// jsonText scans a JSON column stored as JSONB or TEXT.
type jsonText []byte

func (j *jsonText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = jsonText(v)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	return nil
}

func (j jsonText) decode(v any) error {
	if len(j) == 0 {
		return nil
	}
	return json.Unmarshal(j, v)
}

// dateValue scans a DATE column, or TEXT holding a date.
type dateValue struct {
	t *time.Time
}

func (d *dateValue) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.t = nil
		return nil
	case time.Time:
		t := time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		d.t = &t
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("unsupported date column type %T", src)
	}
}

func (d *dateValue) parse(s string) error {
	if s == "" {
		d.t = nil
		return nil
	}
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", s, err)
	}
	d.t = &t
	return nil
}
