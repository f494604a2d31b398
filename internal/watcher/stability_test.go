package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewStabilityChecker_Interval(t *testing.T) {
	if s := NewStabilityChecker(time.Second); s.interval != 250*time.Millisecond || s.timeout != 30*time.Second {
		t.Errorf("checker = %+v", s)
	}
	if s := NewStabilityChecker(40 * time.Millisecond); s.interval != 50*time.Millisecond {
		t.Errorf("interval = %v, want the 50ms floor", s.interval)
	}
}

func TestWaitForStable_StableFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "foto.png")
	os.WriteFile(file, []byte("done"), 0644)

	s := NewStabilityCheckerWithOptions(50*time.Millisecond, time.Second, 10*time.Millisecond)
	if err := s.WaitForStable(context.Background(), file); err != nil {
		t.Errorf("WaitForStable() error = %v", err)
	}
}

func TestWaitForStable_MissingFile(t *testing.T) {
	s := NewStabilityCheckerWithOptions(50*time.Millisecond, time.Second, 10*time.Millisecond)
	err := s.WaitForStable(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestWaitForStable_WaitsForWriterToFinish(t *testing.T) {
	file := filepath.Join(t.TempDir(), "grow.png")
	f, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			f.Write([]byte("chunk"))
			time.Sleep(30 * time.Millisecond)
		}
		f.Close()
	}()

	s := NewStabilityCheckerWithOptions(100*time.Millisecond, 5*time.Second, 10*time.Millisecond)
	if err := s.WaitForStable(context.Background(), file); err != nil {
		t.Fatalf("WaitForStable() error = %v", err)
	}
	<-done

	info, _ := os.Stat(file)
	if info.Size() != 25 {
		t.Errorf("returned before the writer finished: size %d", info.Size())
	}
}

func TestWaitForStable_Timeout(t *testing.T) {
	file := filepath.Join(t.TempDir(), "grow.png")
	os.WriteFile(file, nil, 0644)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		f, _ := os.OpenFile(file, os.O_WRONLY|os.O_APPEND, 0644)
		defer f.Close()
		for {
			select {
			case <-stop:
				return
			default:
				f.Write([]byte("x"))
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()

	s := NewStabilityCheckerWithOptions(time.Second, 150*time.Millisecond, 10*time.Millisecond)
	if err := s.WaitForStable(context.Background(), file); !errors.Is(err, ErrFileUnstable) {
		t.Errorf("expected ErrFileUnstable, got %v", err)
	}
}

func TestWaitForStable_Cancelled(t *testing.T) {
	file := filepath.Join(t.TempDir(), "foto.png")
	os.WriteFile(file, []byte("x"), 0644)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	s := NewStabilityCheckerWithOptions(time.Second, 5*time.Second, 10*time.Millisecond)
	if err := s.WaitForStable(ctx, file); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForStable_FileDeletedDuringWait(t *testing.T) {
	file := filepath.Join(t.TempDir(), "foto.png")
	os.WriteFile(file, []byte("x"), 0644)

	go func() {
		time.Sleep(30 * time.Millisecond)
		os.Remove(file)
	}()

	s := NewStabilityCheckerWithOptions(time.Second, 5*time.Second, 10*time.Millisecond)
	if err := s.WaitForStable(context.Background(), file); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
