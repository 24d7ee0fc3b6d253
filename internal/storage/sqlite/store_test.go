package sqlite

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/julianstephens/snaprise/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

var _ storage.Provider = (*Store)(nil)

func TestLoadBeforeInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	if err == nil || !strings.Contains(err.Error(), "storage not initialized") {
		t.Errorf("Load() error = %v, want not initialized", err)
	}
}

func TestReopenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, "snaprise_barcode_a", []byte("ITEM-42")); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer reopened.Close()

	v, found, err := reopened.Get(ctx, "snaprise_barcode_a")
	if err != nil || !found || string(v) != "ITEM-42" {
		t.Errorf("Get() = (%q, %v, %v), want ITEM-42", v, found, err)
	}
}

func TestKVOperations(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if _, found, err := store.Get(ctx, "nope"); err != nil || found {
		t.Errorf("Get(nope) = found %v, err %v", found, err)
	}

	if err := store.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("overwrite error = %v", err)
	}
	if v, _, _ := store.Get(ctx, "k"); string(v) != "v2" {
		t.Errorf("Get(k) = %q, want v2", v)
	}

	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(ctx, "k"); err != nil {
		t.Errorf("idempotent Remove() error = %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("key present after Remove")
	}
}

func TestKeysIsCaseSensitivePrefix(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	b := storage.NewBatch().
		Set("snaprise_alarm_b", []byte("{}")).
		Set("snaprise_alarm_a", []byte("{}")).
		Set("SNAPRISE_ALARM_c", []byte("{}")).
		Set("snaprise_barcode_a", []byte("x"))
	if err := store.Apply(ctx, b); err != nil {
		t.Fatal(err)
	}

	keys, err := store.Keys(ctx, "snaprise_alarm_")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"snaprise_alarm_a", "snaprise_alarm_b"}; !slices.Equal(keys, want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}
}

func TestApplyIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.GetDB().Exec(`CREATE TRIGGER reject_second BEFORE INSERT ON kv
		WHEN NEW.key = 'second' BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	if err != nil {
		t.Fatal(err)
	}

	b := storage.NewBatch().Set("first", []byte("1")).Set("second", []byte("2"))
	if err := store.Apply(ctx, b); err == nil {
		t.Fatal("Apply() expected error from trigger")
	}
	if _, found, _ := store.Get(ctx, "first"); found {
		t.Error("partial batch was committed")
	}
}

func TestOperationsBeforeInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "x.db"))
	if _, _, err := store.Get(context.Background(), "k"); err != storage.ErrNotInitialized {
		t.Errorf("Get() error = %v, want ErrNotInitialized", err)
	}
}
