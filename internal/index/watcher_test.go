package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/docxreader/internal/docx/docxtest"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind, path string) {
	r.mu.Lock()
	r.events = append(r.events, kind+":"+path)
	r.mu.Unlock()
}

func (r *recorder) has(e string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.events {
		if got == e {
			return true
		}
	}
	return false
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	dir, store := testLibrary(t)
	db := testDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	go Watch(ctx, db, store, quietLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	docxtest.Write(t, dir, "new.docx", docxtest.ScenarioDocx(t))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("new.docx")
		return cs != ""
	}, "new file not indexed by watcher")
	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return rec.has(EventCreated + ":new.docx")
	}, "expected created:new.docx callback")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir, store := testLibrary(t)
	db := testDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	go Watch(ctx, db, store, quietLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "~$lock.docx"), []byte("x"), 0o644)
	time.Sleep(3 * settleDelay)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 0 {
		t.Errorf("unexpected events: %v", rec.events)
	}
}

func TestWatcher_BrokenWriteKeepsEntry(t *testing.T) {
	dir, store := testLibrary(t)
	db := testDB(t)
	p := docxtest.Write(t, dir, "a.docx", docxtest.ScenarioDocx(t))
	if err := Sync(context.Background(), db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}
	before, _ := db.GetChecksum("a.docx")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{}
	go Watch(ctx, db, store, quietLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(p, []byte("half-written"), 0o644)
	time.Sleep(3 * settleDelay)

	if cs, _ := db.GetChecksum("a.docx"); cs != before {
		t.Errorf("checksum changed to %q after an unparseable write", cs)
	}
	if rec.has(EventUpdated + ":a.docx") {
		t.Error("callback fired for an unparseable write")
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	dir, store := testLibrary(t)
	db := testDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(dir, "subdir")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(100 * time.Millisecond)

	docxtest.Write(t, subDir, "deep.docx", docxtest.ScenarioDocx(t))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("subdir/deep.docx")
		return cs != ""
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromCatalog(t *testing.T) {
	dir, store := testLibrary(t)
	db := testDB(t)
	p := docxtest.Write(t, dir, "del.docx", docxtest.ScenarioDocx(t))
	_ = Sync(context.Background(), db, store, quietLogger())

	if cs, _ := db.GetChecksum("del.docx"); cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{}
	go Watch(ctx, db, store, quietLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(p)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("del.docx")
		return cs == "" && rec.has(EventDeleted+":del.docx")
	}, "deleted file still in catalog")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	dir, store := testLibrary(t)
	db := testDB(t)
	docxtest.Write(t, dir, "old.docx", docxtest.ScenarioDocx(t))
	_ = Sync(context.Background(), db, store, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(dir, "old.docx"), filepath.Join(dir, "renamed.docx"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum("old.docx")
		newCS, _ := db.GetChecksum("renamed.docx")
		return oldCS == "" && newCS != ""
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}

func TestWatcher_IdenticalRewriteSkipped(t *testing.T) {
	dir, store := testLibrary(t)
	db := testDB(t)
	data := docxtest.ScenarioDocx(t)
	p := docxtest.Write(t, dir, "same.docx", data)
	if err := Sync(context.Background(), db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{}
	go Watch(ctx, db, store, quietLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(p, data, 0o644)
	time.Sleep(3 * settleDelay)
	if rec.has(EventUpdated + ":same.docx") {
		t.Error("callback fired for identical content")
	}

	changed := docxtest.Docx(t, docxtest.DefaultStyles(), docxtest.Body(docxtest.Plain("changed")))
	_ = os.WriteFile(p, changed, 0o644)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has(EventUpdated + ":same.docx")
	}, "expected updated:same.docx callback")
}
