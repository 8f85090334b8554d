package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"physiobill/internal/blob/core"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	meta := map[string]string{"invoice": "1"}
	info, err := s.Put(ctx, "invoices/1.txt", strings.NewReader("abc"), core.PutOptions{ContentType: "text/plain", Metadata: meta})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	meta["invoice"] = "mutated"
	if info.Size != 3 || info.ETag == "" || info.Metadata["invoice"] != "1" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "invoices/1.txt", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, rc, err := s.Get(ctx, "invoices/1.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "abc" || got.ContentType != "text/plain" {
		t.Fatalf("unexpected get %q %+v", b, got)
	}
	got.Metadata["invoice"] = "changed"
	head, err := s.Head(ctx, "invoices/1.txt")
	if err != nil || head.Metadata["invoice"] != "1" {
		t.Fatalf("head metadata must be isolated: %+v %v", head, err)
	}
	if _, err := s.Put(ctx, "z.txt", strings.NewReader("z"), core.PutOptions{}); err != nil {
		t.Fatalf("put z: %v", err)
	}
	list, _ := s.List(ctx, "invoices/")
	if len(list) != 1 || list[0].Key != "invoices/1.txt" {
		t.Fatalf("unexpected list %+v", list)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 documents, got %d", s.Len())
	}
	if ok, _ := s.Delete(ctx, "invoices/1.txt"); !ok {
		t.Fatalf("expected delete to report existing key")
	}
	if ok, _ := s.Delete(ctx, "invoices/1.txt"); ok {
		t.Fatalf("expected second delete to report missing key")
	}
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Head(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Put(ctx, " ", strings.NewReader(""), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}
	if _, err := s.PresignURL(ctx, "any", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if s.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
}
