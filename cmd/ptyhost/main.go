//go:build !windows

package main

import (
	"bytes"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"

	"github.com/andyrewlee/ptyhost/internal/cli"
	"github.com/andyrewlee/ptyhost/internal/logging"
	"github.com/andyrewlee/ptyhost/internal/safego"
)

// Version info set by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	startPprof()
	startSignalDebug()
	os.Exit(cli.Run(os.Args[1:], cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}))
}

// pprofAddr maps PTYHOST_PPROF to a listen address. Empty means disabled.
func pprofAddr(raw string) string {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "0", "false", "no":
		return ""
	case "1", "true":
		return "127.0.0.1:6060"
	}
	if _, err := strconv.Atoi(raw); err == nil {
		return "127.0.0.1:" + raw
	}
	return raw
}

func startPprof() {
	addr := pprofAddr(os.Getenv("PTYHOST_PPROF"))
	if addr == "" {
		return
	}
	safego.Go("pprof", func() {
		logging.Info("pprof listening on %s", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			logging.Warn("pprof server stopped: %v", err)
		}
	})
}

// startSignalDebug dumps goroutines to the log on SIGUSR1 in dev builds or
// when PTYHOST_DEBUG_SIGNALS is set.
func startSignalDebug() {
	if version != "dev" && strings.TrimSpace(os.Getenv("PTYHOST_DEBUG_SIGNALS")) == "" {
		return
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	safego.Go("signal-debug", func() {
		for range ch {
			var buf bytes.Buffer
			if err := pprof.Lookup("goroutine").WriteTo(&buf, 2); err != nil {
				logging.Warn("Failed to write goroutine dump: %v", err)
				continue
			}
			logging.Warn("GOROUTINE DUMP\n%s", buf.String())
		}
	})
}
