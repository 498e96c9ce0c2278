package evidencefs

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"certmanager/internal/domain"

	"github.com/spf13/afero"
)

func TestStore_SaveLayout(t *testing.T) {
	mem := afero.NewMemMapFs()
	store := New(mem, "/data/uploads")
	at := time.Date(2024, 3, 1, 9, 5, 7, 0, time.FixedZone("EST", -5*3600))

	stored, err := store.Save("AC.L2-3.1.1", "policy.pdf", strings.NewReader("hello"), at)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	want := filepath.Join("/data/uploads", "AC.L2-3.1.1", "20240301T140507Z__policy.pdf")
	if stored.Path != want {
		t.Fatalf("expected path %q, got %q", want, stored.Path)
	}
	if stored.Size != 5 {
		t.Fatalf("expected size 5, got %d", stored.Size)
	}
	data, err := afero.ReadFile(mem, stored.Path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestStore_SaveSanitizesNames(t *testing.T) {
	mem := afero.NewMemMapFs()
	store := New(mem, "/data/uploads")
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	stored, err := store.Save("../../etc", "../../passwd", strings.NewReader("x"), at)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(stored.Path, "/data/uploads/") {
		t.Fatalf("expected path under root, got %q", stored.Path)
	}
	if filepath.Base(stored.Path) != "20240301T000000Z__passwd" {
		t.Fatalf("unexpected stored name %q", filepath.Base(stored.Path))
	}

	stored, err = store.Save("AC.L2-3.1.1", `C:\Users\me\scan.png`, strings.NewReader("x"), at)
	if err != nil {
		t.Fatalf("save windows name: %v", err)
	}
	if filepath.Base(stored.Path) != "20240301T000000Z__scan.png" {
		t.Fatalf("unexpected stored name %q", filepath.Base(stored.Path))
	}

	if _, err := store.Save("AC.L2-3.1.1", "..", strings.NewReader("x"), at); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
}

func TestStore_Remove(t *testing.T) {
	mem := afero.NewMemMapFs()
	store := New(mem, "/data/uploads")

	stored, err := store.Save("AC.L2-3.1.1", "a.txt", strings.NewReader("x"), time.Now())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Remove(stored.Path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(stored.Path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist on second remove, got %v", err)
	}
}

func TestStore_SaveSameNameSameInstantKeepsBoth(t *testing.T) {
	mem := afero.NewMemMapFs()
	store := New(mem, "/data/uploads")
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	contents := []string{"first-file-contents-long", "second", "third"}
	names := []string{"scan.pdf", "a/scan.pdf", `b\scan.pdf`}
	paths := make(map[string]string)
	for i, name := range names {
		stored, err := store.Save("AC.L2-3.1.1", name, strings.NewReader(contents[i]), at)
		if err != nil {
			t.Fatalf("save %q: %v", name, err)
		}
		if prev, ok := paths[stored.Path]; ok {
			t.Fatalf("path %q reused for %q and %q", stored.Path, prev, name)
		}
		paths[stored.Path] = contents[i]
		if stored.Size != int64(len(contents[i])) {
			t.Fatalf("expected size %d, got %d", len(contents[i]), stored.Size)
		}
		if !strings.HasPrefix(filepath.Base(stored.Path), "20240301T000000Z__") || !strings.HasSuffix(stored.Path, "scan.pdf") {
			t.Fatalf("unexpected stored name %q", stored.Path)
		}
	}
	for path, want := range paths {
		data, err := afero.ReadFile(mem, path)
		if err != nil {
			t.Fatalf("read %q: %v", path, err)
		}
		if string(data) != want {
			t.Fatalf("expected %q at %q, got %q", want, path, data)
		}
	}
	if _, err := mem.Stat("/data/uploads/AC.L2-3.1.1/20240301T000000Z__1__scan.pdf"); err != nil {
		t.Fatalf("expected numbered second copy: %v", err)
	}
}
