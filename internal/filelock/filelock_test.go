package filelock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestForDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs", "_build")

	lock := ForDir(dir + string(filepath.Separator))
	if got, want := lock.Path(), dir+".lock"; got != want {
		t.Errorf("Path() = %s, want %s", got, want)
	}
}

func TestLockContextCreatesParentDir(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "nested", "build.lock")
	lock := New(lockPath)

	if err := lock.LockContext(context.Background()); err != nil {
		t.Fatalf("LockContext() error = %v", err)
	}
	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
}

func TestTryLockHeldByOther(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "build.lock")

	holder := New(lockPath)
	if err := holder.LockContext(context.Background()); err != nil {
		t.Fatalf("LockContext() error = %v", err)
	}
	defer holder.Unlock()

	acquired, err := New(lockPath).TryLock()
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if acquired {
		t.Error("TryLock() acquired a lock that is already held")
	}
}

func TestLockContextCancelled(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "build.lock")

	holder := New(lockPath)
	if err := holder.LockContext(context.Background()); err != nil {
		t.Fatalf("LockContext() error = %v", err)
	}
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	if err := New(lockPath).LockContext(ctx); err == nil {
		t.Error("LockContext() should fail while another holder keeps the lock")
	}
}

func TestConcurrentLocking(t *testing.T) {
	tmpDir := t.TempDir()
	lockPath := filepath.Join(tmpDir, "counter.lock")
	counterPath := filepath.Join(tmpDir, "counter.txt")
	if err := os.WriteFile(counterPath, []byte("0"), 0644); err != nil {
		t.Fatal(err)
	}

	const goroutines = 5
	const iterations = 10

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				lock := New(lockPath)
				if err := lock.LockContext(context.Background()); err != nil {
					t.Errorf("LockContext() error = %v", err)
					return
				}

				data, _ := os.ReadFile(counterPath)
				var counter int
				fmt.Sscanf(string(data), "%d", &counter)
				counter++
				os.WriteFile(counterPath, []byte(fmt.Sprintf("%d", counter)), 0644)

				if err := lock.Unlock(); err != nil {
					t.Errorf("Unlock() error = %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(counterPath)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), fmt.Sprintf("%d", goroutines*iterations); got != want {
		t.Errorf("counter = %s, want %s", got, want)
	}
}

func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "reports", "report.json")

	if err := AtomicWrite(target, []byte(`{"passed":1}`)); err != nil {
		t.Fatalf("AtomicWrite() error = %v", err)
	}
	if err := AtomicWrite(target, []byte(`{"passed":2}`)); err != nil {
		t.Fatalf("AtomicWrite() error = %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"passed":2}` {
		t.Errorf("content = %q", data)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("permissions = %v, want 0644", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestConcurrentLockAndWrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "report.json")

	const goroutines = 8
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := LockAndWrite(context.Background(), target, []byte{byte('A' + id)}); err != nil {
				t.Errorf("LockAndWrite() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 1 {
		t.Errorf("expected a single complete write, got %q", data)
	}
}
