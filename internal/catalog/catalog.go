// Package catalog holds the clinic's services and specialists and the
// lookup rules used when a patient names them in free text.
package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Catalog is an immutable snapshot of services and specialists.
type Catalog struct {
	services    []Service
	specialists []Specialist
}

// New builds a catalog from explicit lists.
func New(services []Service, specialists []Specialist) *Catalog {
	return &Catalog{
		services:    append([]Service(nil), services...),
		specialists: append([]Specialist(nil), specialists...),
	}
}

// Default returns a catalog with the built-in price list.
func Default() *Catalog {
	return New(DefaultServices(), DefaultSpecialists())
}

// Load reads a snapshot from the repository.
func Load(ctx context.Context, repo Repository) (*Catalog, error) {
	services, err := repo.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	specialists, err := repo.ListSpecialists(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	return New(services, specialists), nil
}

// Services returns the active services in catalog order.
func (c *Catalog) Services() []Service {
	out := make([]Service, 0, len(c.services))
	for _, s := range c.services {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// Specialists returns the active specialists.
func (c *Catalog) Specialists() []Specialist {
	out := make([]Specialist, 0, len(c.specialists))
	for _, s := range c.specialists {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// FindService resolves a service name. An exact case-insensitive match wins;
// otherwise the first service whose name contains the query is returned with
// partial set to true.
func (c *Catalog) FindService(name string) (svc Service, partial bool, err error) {
	query := normalize(name)
	services := c.Services()
	if query != "" {
		for _, s := range services {
			if normalize(s.Name) == query {
				return s, false, nil
			}
		}
		for _, s := range services {
			if strings.Contains(normalize(s.Name), query) {
				return s, true, nil
			}
		}
	}
	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name)
	}
	return Service{}, false, &NotFoundError{Query: name, Available: names, kind: ErrServiceNotFound}
}

// FindSpecialist resolves a specialist name with the same policy as
// FindService. Dative forms ("Аврааму") match exactly.
func (c *Catalog) FindSpecialist(name string) (sp Specialist, partial bool, err error) {
	query := normalize(name)
	specialists := c.Specialists()
	if query != "" {
		for _, s := range specialists {
			if normalize(s.Name) == query || (s.Dative != "" && normalize(s.Dative) == query) {
				return s, false, nil
			}
		}
		for _, s := range specialists {
			if strings.Contains(normalize(s.Name), query) {
				return s, true, nil
			}
		}
	}
	names := make([]string, 0, len(specialists))
	for _, s := range specialists {
		names = append(names, s.Name)
	}
	return Specialist{}, false, &NotFoundError{Query: name, Available: names, kind: ErrSpecialistNotFound}
}

// SpecialistsFor returns the specialists who perform the named service.
// Unknown services map to every active specialist.
func (c *Catalog) SpecialistsFor(serviceName string) []Specialist {
	all := c.Specialists()
	svc, _, err := c.FindService(serviceName)
	if err != nil || len(svc.Specialists) == 0 {
		return all
	}
	var out []Specialist
	for _, name := range svc.Specialists {
		for _, sp := range all {
			if sp.Name == name {
				out = append(out, sp)
			}
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}

// SpecialistNames is a convenience for prompts.
func SpecialistNames(specialists []Specialist) []string {
	names := make([]string, len(specialists))
	for i, sp := range specialists {
		names[i] = sp.Name
	}
	return names
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
