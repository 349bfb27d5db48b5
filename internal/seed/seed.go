// Package seed loads demo catalog data from a YAML file.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sportspass/ticketing/internal/domain"
	"github.com/sportspass/ticketing/internal/repository"
	"github.com/sportspass/ticketing/internal/service/catalog"
	"github.com/sportspass/ticketing/internal/service/users"
	"gopkg.in/yaml.v3"
)

type File struct {
	Users      []User   `yaml:"users"`
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
	Events     []Event  `yaml:"events"`
}

type User struct {
	Account  string      `yaml:"account"`
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Role     domain.Role `yaml:"role"`
}

type Event struct {
	Name        string    `yaml:"name"`
	Category    string    `yaml:"category"`
	Tags        []string  `yaml:"tags"`
	Sponsor     string    `yaml:"sponsor"` // account of a seeded user
	Date        time.Time `yaml:"date"`
	ReleaseDate time.Time `yaml:"releaseDate"`
	Intro       string    `yaml:"intro"`
	Sessions    []Session `yaml:"sessions"`
}

type Session struct {
	Name       string    `yaml:"name"`
	Place      string    `yaml:"place"`
	StartsAt   time.Time `yaml:"startsAt"`
	SalesOpen  time.Time `yaml:"salesOpen"`
	SalesClose time.Time `yaml:"salesClose"`
	Areas      []Area    `yaml:"areas"`
}

type Area struct {
	Name        string              `yaml:"name"`
	Color       string              `yaml:"color"`
	PriceCents  int64               `yaml:"priceCents"`
	Capacity    int                 `yaml:"capacity"`
	TicketTypes []domain.TicketType `yaml:"ticketTypes"`
}

// Load reads and strictly decodes a seed file; unknown keys are errors.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed.Load: read %s: %w", path, err)
	}

	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("seed.Parse: %w", err)
	}

	return &f, nil
}

type Seeder struct {
	store   repository.Store
	catalog *catalog.Service
	users   *users.Service
	log     *slog.Logger
}

func NewSeeder(store repository.Store, catalog *catalog.Service, users *users.Service, log *slog.Logger) *Seeder {
	return &Seeder{store: store, catalog: catalog, users: users, log: log}
}

type Result struct {
	Users      int
	Categories int
	Tags       int
	Events     int
}

// Apply creates everything in f. Users, categories and tags that already
// exist are reused, so a file can be applied more than once; events are
// always created.
func (s *Seeder) Apply(ctx context.Context, f *File) (Result, error) {
	const op = "seed.Seeder.Apply"

	var res Result

	accounts := make(map[string]uuid.UUID, len(f.Users))
	for _, u := range f.Users {
		created, err := s.users.Provision(ctx, users.RegisterInput{
			Account: u.Account, Email: u.Email, Password: u.Password, Role: u.Role,
		})
		switch {
		case err == nil:
			accounts[u.Account] = created.ID
			res.Users++
		case errors.Is(err, users.ErrUserExists):
			existing, err := s.store.Users().GetByEmail(ctx, u.Email)
			if err != nil {
				return res, fmt.Errorf("%s: user %s: %w", op, u.Account, err)
			}
			accounts[u.Account] = existing.ID
		default:
			return res, fmt.Errorf("%s: user %s: %w", op, u.Account, err)
		}
	}

	categories := make(map[string]uuid.UUID, len(f.Categories))
	for _, name := range f.Categories {
		c, err := s.catalog.CreateCategory(ctx, name)
		switch {
		case err == nil:
			res.Categories++
		case errors.Is(err, catalog.ErrCategoryExists):
			c, err = s.store.Catalog().GetCategoryByName(ctx, name)
			if err != nil {
				return res, fmt.Errorf("%s: category %s: %w", op, name, err)
			}
		default:
			return res, fmt.Errorf("%s: category %s: %w", op, name, err)
		}
		categories[name] = c.ID
	}

	tags := make(map[string]uuid.UUID, len(f.Tags))
	for _, name := range f.Tags {
		t, err := s.catalog.CreateTag(ctx, name)
		switch {
		case err == nil:
			res.Tags++
		case errors.Is(err, catalog.ErrTagExists):
			t, err = s.store.Catalog().GetTagByName(ctx, name)
			if err != nil {
				return res, fmt.Errorf("%s: tag %s: %w", op, name, err)
			}
		default:
			return res, fmt.Errorf("%s: tag %s: %w", op, name, err)
		}
		tags[name] = t.ID
	}

	for _, e := range f.Events {
		in, err := eventInput(e, accounts, categories, tags)
		if err != nil {
			return res, fmt.Errorf("%s: event %q: %w", op, e.Name, err)
		}

		ev, err := s.catalog.CreateEvent(ctx, in)
		if err != nil {
			return res, fmt.Errorf("%s: event %q: %w", op, e.Name, err)
		}
		res.Events++

		s.log.Info("seeded event", "event_id", ev.ID, "name", ev.Name, "sessions", len(e.Sessions))
	}

	return res, nil
}

func eventInput(
	e Event,
	accounts, categories, tags map[string]uuid.UUID,
) (catalog.CreateEventInput, error) {
	in := catalog.CreateEventInput{
		Name:        e.Name,
		Date:        e.Date,
		ReleaseDate: e.ReleaseDate,
		Intro:       e.Intro,
	}

	var ok bool
	if in.CategoryID, ok = categories[e.Category]; !ok {
		return in, fmt.Errorf("unknown category %q", e.Category)
	}

	if e.Sponsor != "" {
		if in.SponsorID, ok = accounts[e.Sponsor]; !ok {
			return in, fmt.Errorf("unknown sponsor %q", e.Sponsor)
		}
	}

	for _, name := range e.Tags {
		id, ok := tags[name]
		if !ok {
			return in, fmt.Errorf("unknown tag %q", name)
		}
		in.TagIDs = append(in.TagIDs, id)
	}

	for _, s := range e.Sessions {
		si := catalog.SessionInput{
			Name:       s.Name,
			Place:      s.Place,
			StartsAt:   s.StartsAt,
			SalesOpen:  s.SalesOpen,
			SalesClose: s.SalesClose,
		}
		for _, a := range s.Areas {
			si.Areas = append(si.Areas, catalog.AreaInput{
				Name:        a.Name,
				Color:       a.Color,
				PriceCents:  a.PriceCents,
				Capacity:    a.Capacity,
				TicketTypes: a.TicketTypes,
			})
		}
		in.Sessions = append(in.Sessions, si)
	}

	return in, nil
}
