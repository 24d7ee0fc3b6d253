package barcode

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/storage"
)

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore())

	if _, found, err := s.Get(ctx, "a1"); err != nil || found {
		t.Fatalf("Get() on empty store = found %v, err %v", found, err)
	}

	if err := s.Put(ctx, "a1", "ITEM-42"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	code, found, err := s.Get(ctx, "a1")
	if err != nil || !found || code != "ITEM-42" {
		t.Errorf("Get() = (%q, %v, %v), want (ITEM-42, true, nil)", code, found, err)
	}

	if err := s.Put(ctx, "a1", "ITEM-43"); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := s.Get(ctx, "a1"); code != "ITEM-43" {
		t.Errorf("Put() did not overwrite: got %q", code)
	}
}

func TestPutRejectsEmpty(t *testing.T) {
	s := NewStore(storage.NewMemoryStore())
	if err := s.Put(context.Background(), "a1", ""); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Put(empty) error = %v, want ErrValidation", err)
	}
	if has, _ := s.Has(context.Background(), "a1"); has {
		t.Error("empty code was stored")
	}
}

// labelFailure rejects any write that touches a label key.
type labelFailure struct {
	*storage.MemoryStore
}

var errLabelWrite = errors.New("label write failed")

func (f labelFailure) Set(ctx context.Context, key string, value []byte) error {
	return f.Apply(ctx, storage.NewBatch().Set(key, value))
}

func (f labelFailure) Apply(ctx context.Context, b *storage.Batch) error {
	for _, op := range b.Ops() {
		if strings.HasPrefix(op.Key, constants.BarcodeLabelKeyPrefix) {
			return errLabelWrite
		}
	}
	return f.MemoryStore.Apply(ctx, b)
}

func TestPutWithLabel(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore())

	if err := s.PutWithLabel(ctx, "a1", "ITEM-42", "  coffee tin "); err != nil {
		t.Fatalf("PutWithLabel() error = %v", err)
	}
	code, _, _ := s.Get(ctx, "a1")
	label, _ := s.Label(ctx, "a1")
	if code != "ITEM-42" || label != "coffee tin" {
		t.Errorf("stored (%q, %q), want (ITEM-42, coffee tin)", code, label)
	}

	if err := s.PutWithLabel(ctx, "a1", "ITEM-43", ""); err != nil {
		t.Fatal(err)
	}
	if label, _ := s.Label(ctx, "a1"); label != "" {
		t.Errorf("empty label kept %q", label)
	}
	if err := s.PutWithLabel(ctx, "a1", "", "tin"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("PutWithLabel(empty code) error = %v, want ErrValidation", err)
	}
}

func TestPutWithLabelFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore(labelFailure{storage.NewMemoryStore()})

	if err := s.PutWithLabel(ctx, "a1", "ITEM-42", "coffee tin"); !errors.Is(err, errLabelWrite) {
		t.Fatalf("PutWithLabel() error = %v, want label write failure", err)
	}
	if has, _ := s.Has(ctx, "a1"); has {
		t.Error("code stored although its label failed")
	}
}

func TestMatchesIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore())
	_ = s.Put(ctx, "a1", "ITEM-42")

	tests := []struct {
		alarm   string
		scanned string
		want    bool
	}{
		{"a1", "ITEM-42", true},
		{"a1", "item-42", false},
		{"a1", "ITEM-42 ", false},
		{"a1", "", false},
		{"missing", "ITEM-42", false},
	}
	for _, tt := range tests {
		got, err := s.Matches(ctx, tt.alarm, tt.scanned)
		if err != nil {
			t.Fatalf("Matches() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.alarm, tt.scanned, got, tt.want)
		}
	}
}

func TestRemoveIsIdempotentAndClearsLabel(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore())
	_ = s.Put(ctx, "a1", "ITEM-42")
	_ = s.PutLabel(ctx, "a1", "  coffee tin ")

	if label, _ := s.Label(ctx, "a1"); label != "coffee tin" {
		t.Errorf("Label() = %q, want trimmed label", label)
	}

	if err := s.Remove(ctx, "a1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove(ctx, "a1"); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
	if has, _ := s.Has(ctx, "a1"); has {
		t.Error("code still present after Remove")
	}
	if label, _ := s.Label(ctx, "a1"); label != "" {
		t.Errorf("label %q still present after Remove", label)
	}
}
