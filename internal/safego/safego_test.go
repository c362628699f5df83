package safego

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_NoPanic(t *testing.T) {
	var called bool
	Run("test", func() {
		called = true
	})
	if !called {
		t.Error("function was not called")
	}
}

func TestRun_CallsPanicHandler(t *testing.T) {
	var (
		mu           sync.Mutex
		handlerName  string
		handlerValue any
	)

	SetPanicHandler(func(name string, recovered any, stack []byte) {
		mu.Lock()
		handlerName = name
		handlerValue = recovered
		mu.Unlock()
	})
	defer SetPanicHandler(nil)

	Run("pty-reader", func() {
		panic("oops")
	})

	mu.Lock()
	defer mu.Unlock()
	if handlerName != "pty-reader" {
		t.Errorf("expected name 'pty-reader', got %q", handlerName)
	}
	if handlerValue != "oops" {
		t.Errorf("expected recovered value 'oops', got %v", handlerValue)
	}
}

func TestRun_PanicHandlerPanicIsRecovered(t *testing.T) {
	SetPanicHandler(func(name string, recovered any, stack []byte) {
		panic("handler panic")
	})
	defer SetPanicHandler(nil)

	Run("test", func() {
		panic("original panic")
	})
}

func TestRun_EmptyName(t *testing.T) {
	var (
		mu          sync.Mutex
		handlerName string
	)
	SetPanicHandler(func(name string, recovered any, stack []byte) {
		mu.Lock()
		handlerName = name
		mu.Unlock()
	})
	defer SetPanicHandler(nil)

	Run("", func() {
		panic("test")
	})

	mu.Lock()
	defer mu.Unlock()
	if handlerName != "goroutine" {
		t.Errorf("expected default name 'goroutine', got %q", handlerName)
	}
}

func TestGo_RunsInGoroutine(t *testing.T) {
	var called int32
	done := make(chan struct{})
	Go("test", func() {
		atomic.StoreInt32(&called, 1)
		close(done)
	})

	select {
	case <-done:
		if atomic.LoadInt32(&called) != 1 {
			t.Error("function was not called")
		}
	case <-time.After(time.Second):
		t.Error("timed out waiting for goroutine")
	}
}

func TestStart_ClosesDoneAfterPanic(t *testing.T) {
	done := Start("panicky", func() {
		panic("boom")
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done channel not closed after panic")
	}
}

func TestStart_ClosesDoneAfterReturn(t *testing.T) {
	var n int32
	done := Start("worker", func() {
		atomic.AddInt32(&n, 1)
	})
	<-done
	if atomic.LoadInt32(&n) != 1 {
		t.Fatalf("expected worker to run once, ran %d", n)
	}
}
