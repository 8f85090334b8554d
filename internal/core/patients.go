package core

import (
	"context"
	"strings"

	"physiobill/pkg/domain"
)

// AddPatient stores a new patient with a generated id and creation time.
func (s *Store) AddPatient(ctx context.Context, in domain.PatientInput) (domain.Patient, error) {
	patient := domain.Patient{
		ID:        s.newID(),
		Name:      in.Name,
		Phone:     in.Phone,
		Age:       in.Age,
		Sex:       in.Sex,
		Notes:     in.Notes,
		CreatedAt: s.now(),
	}
	err := s.mutate(ctx, "add_patient", func(st *domain.Snapshot) error {
		st.Patients = append(st.Patients, patient)
		return nil
	})
	if err != nil {
		return domain.Patient{}, err
	}
	s.logger.Info("patient added", "patient_id", patient.ID)
	return patient, nil
}

// UpdatePatient merges patch into the patient with the given id.
func (s *Store) UpdatePatient(ctx context.Context, id string, patch domain.PatientPatch) (domain.Patient, error) {
	var updated domain.Patient
	err := s.mutate(ctx, "update_patient", func(st *domain.Snapshot) error {
		idx := indexOf(st.Patients, id, func(p domain.Patient) string { return p.ID })
		if idx < 0 {
			return &domain.NotFoundError{Entity: domain.EntityPatient, ID: id}
		}
		patch.Apply(&st.Patients[idx])
		updated = st.Patients[idx]
		return nil
	})
	return updated, err
}

// DeletePatient removes the patient. Invoices referencing it are kept and
// resolve to a placeholder patient.
func (s *Store) DeletePatient(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_patient", func(st *domain.Snapshot) error {
		idx := indexOf(st.Patients, id, func(p domain.Patient) string { return p.ID })
		if idx < 0 {
			return &domain.NotFoundError{Entity: domain.EntityPatient, ID: id}
		}
		st.Patients = append(st.Patients[:idx], st.Patients[idx+1:]...)
		return nil
	})
}

// GetPatientByID returns the patient with the given id.
func (s *Store) GetPatientByID(id string) (domain.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.state.Patients, id, func(p domain.Patient) string { return p.ID })
	if idx < 0 {
		return domain.Patient{}, false
	}
	return s.state.Patients[idx], true
}

// ListPatients returns every patient in insertion order.
func (s *Store) ListPatients() []domain.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Patient, len(s.state.Patients))
	copy(out, s.state.Patients)
	return out
}

// SearchPatients matches the query case-insensitively against names and as
// a plain substring against phone numbers. A blank query returns everyone.
func (s *Store) SearchPatients(query string) []domain.Patient {
	if strings.TrimSpace(query) == "" {
		return s.ListPatients()
	}
	needle := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Patient{}
	for _, p := range s.state.Patients {
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(p.Phone, query) {
			out = append(out, p)
		}
	}
	return out
}

func indexOf[T any](items []T, id string, key func(T) string) int {
	for i, item := range items {
		if key(item) == id {
			return i
		}
	}
	return -1
}
