package session

import (
	"path/filepath"
	"testing"

	sessionmodel "fake-store/go-client/internal/domains/session/model"
	"fake-store/go-client/internal/securestore"
	"fake-store/go-client/internal/testutil/fsperm"
	"fake-store/go-client/pkg/models"
)

func TestStateStoreRoundTripOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	kv, err := securestore.NewFileKV(dir, "test-secret")
	if err != nil {
		t.Fatalf("new kv failed: %v", err)
	}
	store := NewStateStore(kv)

	if _, ok, err := store.Load(); err != nil || ok {
		t.Fatalf("empty store must load nothing: ok=%v err=%v", ok, err)
	}

	want := sessionmodel.Persisted{Token: "tok-1", User: models.User{ID: "5", Name: "Ann", Email: "ann@example.com"}}
	if err := store.Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	fsperm.AssertPrivateDirPerm(t, dir)
	fsperm.AssertPrivateFilePerm(t, filepath.Join(dir, "token.enc"))

	reopened, err := securestore.NewFileKV(dir, "test-secret")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, ok, err := NewStateStore(reopened).Load()
	if err != nil || !ok {
		t.Fatalf("load failed: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("unexpected session: got=%+v want=%+v", got, want)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatal("cleared store still loads a session")
	}
}

func TestStateStoreRequiresBothBlobs(t *testing.T) {
	kv := securestore.NewMemoryKV()
	if err := kv.Put("token", []byte("tok")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if _, ok, err := NewStateStore(kv).Load(); err != nil || ok {
		t.Fatalf("token without user must not load: ok=%v err=%v", ok, err)
	}
}

func TestStateStoreRejectsCorruptUser(t *testing.T) {
	kv := securestore.NewMemoryKV()
	_ = kv.Put("token", []byte("tok"))
	_ = kv.Put("user", []byte("{"))
	if _, _, err := NewStateStore(kv).Load(); err == nil {
		t.Fatal("expected decode error for corrupt user blob")
	}
}
