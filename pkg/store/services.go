package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/authguard/authguard-terminal/pkg/models"
	"github.com/authguard/authguard-terminal/pkg/stream"
)

var (
	ErrServiceNotFound  = errors.New("service not found")
	ErrAmbiguousService = errors.New("more than one service matches")
)

type servicesFile struct {
	Services []models.Service `yaml:"services"`
}

// ServiceStore keeps the service collection in services.yaml
type ServiceStore struct {
	path string
	cell *stream.Cell[[]models.Service]
	mu   sync.Mutex
}

// NewServiceStore creates a store rooted at the data directory dir and reads
// the current collection.
func NewServiceStore(dir string) (*ServiceStore, error) {
	s := &ServiceStore{
		path: filepath.Join(dir, ServicesFile),
		cell: stream.NewCell[[]models.Service](nil),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Observe returns a replay-latest stream of the collection
func (s *ServiceStore) Observe() (<-chan []models.Service, func()) {
	return s.cell.Subscribe()
}

// List returns the services sorted by display name
func (s *ServiceStore) List() []models.Service {
	return append([]models.Service(nil), s.cell.Value()...)
}

// Find returns the service whose ID, ID prefix or display name matches ref
func (s *ServiceStore) Find(ref string) (models.Service, error) {
	var matches []models.Service
	for _, svc := range s.cell.Value() {
		if svc.ID == ref {
			return svc, nil
		}
		if strings.HasPrefix(svc.ID, ref) || strings.EqualFold(svc.DisplayName(), ref) || strings.EqualFold(svc.Name, ref) {
			matches = append(matches, svc)
		}
	}
	switch len(matches) {
	case 0:
		return models.Service{}, fmt.Errorf("%w: %s", ErrServiceNotFound, ref)
	case 1:
		return matches[0], nil
	}
	return models.Service{}, fmt.Errorf("%w: %s", ErrAmbiguousService, ref)
}

// Reload re-reads services.yaml and publishes the result
func (s *ServiceStore) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var f servicesFile
	if _, err := readYAML(s.path, &f); err != nil {
		return fmt.Errorf("failed to read services: %w", err)
	}
	s.publish(f.Services)
	return nil
}

// Add stores svc, assigning an ID and creation time when missing
func (s *ServiceStore) Add(ctx context.Context, svc models.Service) (models.Service, error) {
	if err := ctx.Err(); err != nil {
		return models.Service{}, err
	}
	if svc.Secret == "" {
		return models.Service{}, fmt.Errorf("service %q has no secret", svc.DisplayName())
	}
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	if svc.Created.IsZero() {
		svc.Created = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	services := append(s.List(), svc)
	if err := s.write(services); err != nil {
		return models.Service{}, err
	}
	return svc, nil
}

// Remove deletes the service with the given ID
func (s *ServiceStore) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.cell.Value()
	services := make([]models.Service, 0, len(current))
	for _, svc := range current {
		if svc.ID != id {
			services = append(services, svc)
		}
	}
	if len(services) == len(current) {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}
	return s.write(services)
}

// ClearAll deletes every service
func (s *ServiceStore) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(nil); err != nil {
		return err
	}
	logger.Infof("all services cleared")
	return nil
}

// write must be called with s.mu held
func (s *ServiceStore) write(services []models.Service) error {
	if err := writeYAML(s.path, servicesFile{Services: services}); err != nil {
		return fmt.Errorf("failed to write services: %w", err)
	}
	s.publish(services)
	return nil
}

func (s *ServiceStore) publish(services []models.Service) {
	sorted := append([]models.Service(nil), services...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].DisplayName()) < strings.ToLower(sorted[j].DisplayName())
	})
	s.cell.Set(sorted)
}
