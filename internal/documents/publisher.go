// Package documents renders invoices into printable artifacts, stores them in
// the configured document store and produces shareable links.
package documents

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"physiobill/internal/blob"
	"physiobill/internal/core"
	"physiobill/internal/render"
	"physiobill/pkg/domain"
)

const (
	// Prefix is the key prefix every invoice document is stored under.
	Prefix = "invoices/"
	// ContentType is the media type of rendered invoices.
	ContentType = "text/plain; charset=utf-8"
	// DefaultShareExpiry bounds the lifetime of share links.
	DefaultShareExpiry = 24 * time.Hour
)

// ErrSharingUnavailable is returned when the document store cannot produce
// links.
var ErrSharingUnavailable = errors.New("Sharing is not available on this device") //nolint:staticcheck // user-facing message

// Artifact describes one stored invoice document.
type Artifact struct {
	Key         string
	InvoiceID   string
	ContentType string
	Size        int64
	URL         string
	CreatedAt   time.Time
}

// Publisher renders and stores invoice documents.
type Publisher struct {
	store  blob.Store
	logger core.Logger
	now    func() time.Time
	expiry time.Duration
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger used for publish events.
func WithLogger(l core.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the time source used for document keys.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// WithShareExpiry sets how long share links stay valid.
func WithShareExpiry(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.expiry = d
		}
	}
}

// NewPublisher constructs a Publisher over store.
func NewPublisher(store blob.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: core.NewNoopLogger(),
		now:    time.Now,
		expiry: DefaultShareExpiry,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the storage key for an invoice document generated at t.
func Key(invoiceID string, t time.Time) string {
	return fmt.Sprintf("%s%d.txt", keyStem(invoiceID), t.UnixMilli())
}

func keyStem(invoiceID string) string {
	suffix := invoiceID
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	return Prefix + "invoice_" + suffix + "_"
}

// Generate renders doc and stores it under a fresh key.
func (p *Publisher) Generate(ctx context.Context, doc domain.InvoiceDocument) (Artifact, error) {
	created := p.now()
	key := Key(doc.Invoice.ID, created)
	content := render.Document(doc)
	info, err := p.store.Put(ctx, key, strings.NewReader(content), blob.PutOptions{
		ContentType: ContentType,
		Metadata: map[string]string{
			"invoice-id": doc.Invoice.ID,
			"patient-id": doc.Invoice.PatientID,
		},
	})
	if err != nil {
		p.logger.Error("invoice document store failed", "invoice", doc.Invoice.ID, "key", key, "error", err)
		return Artifact{}, fmt.Errorf("store invoice document: %w", err)
	}
	p.logger.Info("invoice document generated", "invoice", doc.Invoice.ID, "key", key, "bytes", info.Size)
	return Artifact{
		Key:         key,
		InvoiceID:   doc.Invoice.ID,
		ContentType: ContentType,
		Size:        info.Size,
		URL:         info.URL,
		CreatedAt:   created,
	}, nil
}

// Share returns a link to a stored document. Stores without link support
// yield ErrSharingUnavailable.
func (p *Publisher) Share(ctx context.Context, key string) (string, error) {
	url, err := p.store.PresignURL(ctx, key, blob.SignedURLOptions{Method: http.MethodGet, Expiry: p.expiry})
	if errors.Is(err, blob.ErrUnsupported) {
		return "", ErrSharingUnavailable
	}
	if err != nil {
		return "", fmt.Errorf("share %s: %w", key, err)
	}
	p.logger.Debug("invoice document shared", "key", key, "driver", string(p.store.Driver()))
	return url, nil
}

// List returns stored invoice documents, optionally only those of one invoice.
func (p *Publisher) List(ctx context.Context, invoiceID string) ([]blob.Info, error) {
	infos, err := p.store.List(ctx, Prefix)
	if err != nil {
		return nil, fmt.Errorf("list invoice documents: %w", err)
	}
	if invoiceID == "" {
		return infos, nil
	}
	marker := keyStem(invoiceID)
	out := infos[:0]
	for _, info := range infos {
		if strings.HasPrefix(info.Key, marker) {
			out = append(out, info)
		}
	}
	return out, nil
}
