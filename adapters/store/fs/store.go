package storefs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-resume/resume"
)

// Store provides filesystem-backed persistence slots. Each key is a file
// under Root.
type Store struct {
	Root string
}

var _ resume.KeyValueStore = (*Store)(nil)

// NewStore creates a filesystem-backed slot store.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// Get reads a slot.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	_ = ctx
	pathOnDisk, err := s.slotPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(pathOnDisk)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, resume.NewError(resume.KindNotFound, fmt.Sprintf("slot %q not found", key), err)
		}
		return nil, resume.NewError(resume.KindPersistence, fmt.Sprintf("read slot %q", key), err)
	}
	return data, nil
}

// Set overwrites a slot. The write is atomic.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_ = ctx
	pathOnDisk, err := s.slotPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(pathOnDisk), 0o755); err != nil {
		return resume.NewError(resume.KindPersistence, "create slot dir", err)
	}
	if _, err := writeAtomic(pathOnDisk, ".slot-*", bytes.NewReader(value)); err != nil {
		return resume.NewError(resume.KindPersistence, fmt.Sprintf("write slot %q", key), err)
	}
	return nil
}

// Delete removes a slot. Missing slots are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	_ = ctx
	pathOnDisk, err := s.slotPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(pathOnDisk); err != nil && !os.IsNotExist(err) {
		return resume.NewError(resume.KindPersistence, fmt.Sprintf("delete slot %q", key), err)
	}
	return nil
}

func (s *Store) slotPath(key string) (string, error) {
	if s == nil {
		return "", resume.NewError(resume.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return "", resume.NewError(resume.KindValidation, "store root is required", nil)
	}
	if key == "" {
		return "", resume.NewError(resume.KindValidation, "slot key is required", nil)
	}
	return resolvePath(s.Root, key+".json")
}

// DownloadMeta is written next to each delivered document.
type DownloadMeta struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Pages       int       `json:"pages"`
	Digest      string    `json:"digest,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Downloads delivers documents into a directory, like a browser download
// folder.
type Downloads struct {
	Dir string
	// Unique stamps the filename with the delivery time instead of
	// overwriting the previous document.
	Unique bool
	Now    func() time.Time
}

var _ resume.Deliverer = (*Downloads)(nil)

// NewDownloads creates a directory deliverer.
func NewDownloads(dir string) *Downloads {
	return &Downloads{Dir: dir, Now: time.Now}
}

// Deliver writes doc into Dir.
func (d *Downloads) Deliver(ctx context.Context, doc resume.Document) error {
	_ = ctx
	if d == nil {
		return resume.NewError(resume.KindInternal, "downloads is nil", nil)
	}
	if d.Dir == "" {
		return resume.NewError(resume.KindValidation, "downloads dir is required", nil)
	}
	if len(doc.Data) == 0 {
		return resume.NewError(resume.KindValidation, "document is empty", nil)
	}

	now := d.now()
	name := doc.Filename
	if name == "" {
		name = resume.DefaultFilename
	}
	if d.Unique {
		name = stampFilename(name, now)
	}
	pathOnDisk, err := resolvePath(d.Dir, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(pathOnDisk), 0o755); err != nil {
		return err
	}

	size, err := writeAtomic(pathOnDisk, ".download-*", bytes.NewReader(doc.Data))
	if err != nil {
		return err
	}

	meta := DownloadMeta{
		Filename:    filepath.Base(pathOnDisk),
		ContentType: doc.ContentType,
		Size:        size,
		Pages:       doc.Pages(),
		Digest:      doc.ImageDigest,
		CreatedAt:   now,
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = writeAtomic(metaPath(pathOnDisk), ".meta-*", bytes.NewReader(payload))
	return err
}

// Open reads a delivered document and its metadata.
func (d *Downloads) Open(ctx context.Context, filename string) (io.ReadCloser, DownloadMeta, error) {
	_ = ctx
	if d == nil || d.Dir == "" {
		return nil, DownloadMeta{}, resume.NewError(resume.KindValidation, "downloads dir is required", nil)
	}
	pathOnDisk, err := resolvePath(d.Dir, filename)
	if err != nil {
		return nil, DownloadMeta{}, err
	}
	file, err := os.Open(pathOnDisk)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, DownloadMeta{}, resume.NewError(resume.KindNotFound, fmt.Sprintf("download %q not found", filename), err)
		}
		return nil, DownloadMeta{}, err
	}

	meta := readMeta(pathOnDisk)
	if meta.Size == 0 {
		if info, err := file.Stat(); err == nil {
			meta.Size = info.Size()
			if meta.CreatedAt.IsZero() {
				meta.CreatedAt = info.ModTime()
			}
		}
	}
	if meta.Filename == "" {
		meta.Filename = filepath.Base(pathOnDisk)
	}
	return file, meta, nil
}

func (d *Downloads) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func stampFilename(name string, now time.Time) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s-%s%s", base, now.UTC().Format("20060102-150405"), ext)
}

func resolvePath(rootDir, key string) (string, error) {
	clean := path.Clean("/" + key)
	rel := strings.TrimPrefix(clean, "/")
	if rel == "" || rel == "." {
		return "", resume.NewError(resume.KindValidation, "invalid key", nil)
	}

	root, err := filepath.Abs(rootDir)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) && target != root {
		return "", resume.NewError(resume.KindValidation, "key escapes root", nil)
	}
	return target, nil
}

func writeAtomic(pathOnDisk, pattern string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(pathOnDisk), pattern)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), pathOnDisk); err != nil {
		return 0, err
	}
	return size, nil
}

func readMeta(pathOnDisk string) DownloadMeta {
	data, err := os.ReadFile(metaPath(pathOnDisk))
	if err != nil {
		return DownloadMeta{}
	}
	var meta DownloadMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return DownloadMeta{}
	}
	return meta
}

func metaPath(pathOnDisk string) string {
	return pathOnDisk + ".meta.json"
}
