package storefs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-resume/resume"
)

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(t.TempDir())

	if err := store.Set(ctx, resume.AutoSaveKey, []byte(`{"template":"crimson"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, err := store.Get(ctx, resume.AutoSaveKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != `{"template":"crimson"}` {
		t.Fatalf("unexpected payload %q", data)
	}

	if err := store.Set(ctx, resume.AutoSaveKey, []byte(`{}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, _ = store.Get(ctx, resume.AutoSaveKey)
	if string(data) != `{}` {
		t.Fatalf("expected overwrite, got %q", data)
	}

	if err := store.Delete(ctx, resume.AutoSaveKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, resume.AutoSaveKey); !resume.IsKind(err, resume.KindNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.Delete(ctx, resume.AutoSaveKey); err != nil {
		t.Fatalf("expected missing delete to succeed, got %v", err)
	}
}

func TestStore_Validation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewStore("").Get(ctx, "k"); !resume.IsKind(err, resume.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := NewStore(t.TempDir()).Set(ctx, "", nil); !resume.IsKind(err, resume.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStore_KeyStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	if err := store.Set(context.Background(), "../escape", []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.json")); err != nil {
		t.Fatalf("expected slot under root: %v", err)
	}
}

func TestStore_HydratesStore(t *testing.T) {
	ctx := context.Background()
	kv := NewStore(t.TempDir())
	store := resume.NewStore()
	saver := &resume.AutoSaver{KV: kv}
	store.Subscribe(saver)

	name := "Ada"
	if _, err := store.UpdatePersonalInfo(ctx, resume.PersonalInfoPatch{FullName: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}

	restored := resume.NewStore()
	source, err := resume.Hydrate(ctx, restored, kv)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if source != resume.HydrateFromAutoSave {
		t.Fatalf("expected autosave source, got %v", source)
	}
	if restored.Snapshot().PersonalInfo.FullName != "Ada" {
		t.Fatalf("expected restored name")
	}
}

func TestDownloads_DeliverOpen(t *testing.T) {
	dir := t.TempDir()
	downloads := NewDownloads(dir)
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	downloads.Now = func() time.Time { return created }

	doc := resume.Document{
		Filename:    "resume.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4 test"),
		Layout:      resume.Layout{Placements: []resume.Placement{{Page: 0}, {Page: 1}}},
		ImageDigest: "abc",
	}
	if err := downloads.Deliver(context.Background(), doc); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	reader, meta, err := downloads.Open(context.Background(), "resume.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.4 test" {
		t.Fatalf("unexpected payload %q", data)
	}
	if meta.Pages != 2 || meta.Size != int64(len(doc.Data)) || !meta.CreatedAt.Equal(created) || meta.Digest != "abc" {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestDownloads_Unique(t *testing.T) {
	dir := t.TempDir()
	downloads := NewDownloads(dir)
	downloads.Unique = true
	downloads.Now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	if err := downloads.Deliver(context.Background(), resume.Document{Data: []byte("pdf")}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "resume-20240506-070809.pdf")); err != nil {
		t.Fatalf("expected stamped file: %v", err)
	}
}

func TestDownloads_Errors(t *testing.T) {
	downloads := NewDownloads(t.TempDir())
	if err := downloads.Deliver(context.Background(), resume.Document{}); !resume.IsKind(err, resume.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, _, err := downloads.Open(context.Background(), "missing.pdf"); !resume.IsKind(err, resume.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
