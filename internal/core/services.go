package core

import (
	"context"
	"strings"

	"physiobill/pkg/domain"
)

// AddService stores a new billable service with a generated id.
func (s *Store) AddService(ctx context.Context, in domain.ServiceInput) (domain.Service, error) {
	service := domain.Service{
		ID:          s.newID(),
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
	}
	err := s.mutate(ctx, "add_service", func(st *domain.Snapshot) error {
		st.Services = append(st.Services, service)
		return nil
	})
	if err != nil {
		return domain.Service{}, err
	}
	s.logger.Info("service added", "service_id", service.ID)
	return service, nil
}

// UpdateService merges patch into the service with the given id. Existing
// invoices keep the unit prices captured when they were composed.
func (s *Store) UpdateService(ctx context.Context, id string, patch domain.ServicePatch) (domain.Service, error) {
	var updated domain.Service
	err := s.mutate(ctx, "update_service", func(st *domain.Snapshot) error {
		idx := indexOf(st.Services, id, func(sv domain.Service) string { return sv.ID })
		if idx < 0 {
			return &domain.NotFoundError{Entity: domain.EntityService, ID: id}
		}
		patch.Apply(&st.Services[idx])
		updated = st.Services[idx]
		return nil
	})
	return updated, err
}

// DeleteService removes the service. Invoice lines referencing it resolve
// to a placeholder name.
func (s *Store) DeleteService(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_service", func(st *domain.Snapshot) error {
		idx := indexOf(st.Services, id, func(sv domain.Service) string { return sv.ID })
		if idx < 0 {
			return &domain.NotFoundError{Entity: domain.EntityService, ID: id}
		}
		st.Services = append(st.Services[:idx], st.Services[idx+1:]...)
		return nil
	})
}

// GetServiceByID returns the service with the given id.
func (s *Store) GetServiceByID(id string) (domain.Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.state.Services, id, func(sv domain.Service) string { return sv.ID })
	if idx < 0 {
		return domain.Service{}, false
	}
	return s.state.Services[idx], true
}

// ListServices returns every service in insertion order.
func (s *Store) ListServices() []domain.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Service, len(s.state.Services))
	copy(out, s.state.Services)
	return out
}

// SearchServices matches the query case-insensitively against service names.
func (s *Store) SearchServices(query string) []domain.Service {
	if strings.TrimSpace(query) == "" {
		return s.ListServices()
	}
	needle := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Service{}
	for _, sv := range s.state.Services {
		if strings.Contains(strings.ToLower(sv.Name), needle) {
			out = append(out, sv)
		}
	}
	return out
}
