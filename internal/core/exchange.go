package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"physiobill/pkg/domain"
)

// ExportDocument is the portable backup format written by Export.
type ExportDocument struct {
	Patients   []domain.Patient `json:"patients"`
	Services   []domain.Service `json:"services"`
	Invoices   []domain.Invoice `json:"invoices"`
	ExportDate time.Time        `json:"exportDate"`
}

// Export writes every collection as an indented JSON document.
func (s *Store) Export(w io.Writer) error {
	s.mu.RLock()
	doc := ExportDocument{
		Patients:   s.state.Patients,
		Services:   s.state.Services,
		Invoices:   s.state.Invoices,
		ExportDate: s.now(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err := enc.Encode(doc)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Import replaces all collections with the contents of an export document
// and persists them.
func (s *Store) Import(ctx context.Context, r io.Reader) error {
	var doc ExportDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("import: decode: %w", err)
	}
	snap := normalize(domain.Snapshot{Patients: doc.Patients, Services: doc.Services, Invoices: doc.Invoices})
	err := s.mutate(ctx, "import", func(st *domain.Snapshot) error {
		*st = snap
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("billing state imported",
		"patients", len(snap.Patients),
		"services", len(snap.Services),
		"invoices", len(snap.Invoices))
	return nil
}
