// Package profiling writes CPU and heap profiles of a LogProbe run.
package profiling

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/mimecast/logprobe/internal/errors"
	"github.com/mimecast/logprobe/internal/io/dlog"
)

const timestampLayout = "20060102_150405"

// Config holds profiling configuration.
type Config struct {
	CPUProfile bool
	MemProfile bool
	// ProfileDir is created when missing. Defaults to "profiles".
	ProfileDir string
	// CommandName prefixes the profile file names.
	CommandName string
}

// Enabled returns true if any profile is to be written.
func (c Config) Enabled() bool {
	return c.CPUProfile || c.MemProfile
}

// Profiler manages the profiles of one run.
type Profiler struct {
	cfg        Config
	cpuProfile *os.File
	memProfile string
}

// Start starts CPU profiling right away. The heap profile is written by
// Stop. A disabled config yields a profiler which does nothing.
func Start(cfg Config) (*Profiler, error) {
	p := &Profiler{cfg: cfg}
	if !cfg.Enabled() {
		return p, nil
	}
	if p.cfg.ProfileDir == "" {
		p.cfg.ProfileDir = "profiles"
	}
	if err := os.MkdirAll(p.cfg.ProfileDir, 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "profile dir: %v", err)
	}

	if cfg.CPUProfile {
		path := p.path("cpu")
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, err
		}
		p.cpuProfile = f
		dlog.Client.Debug("Started CPU profiling", path)
	}
	if cfg.MemProfile {
		p.memProfile = p.path("mem")
	}
	return p, nil
}

// Stop stops CPU profiling and writes the heap profile.
func (p *Profiler) Stop() {
	if p.cpuProfile != nil {
		pprof.StopCPUProfile()
		p.cpuProfile.Close()
		dlog.Client.Debug("Stopped CPU profiling", p.cpuProfile.Name())
		p.cpuProfile = nil
	}
	if p.memProfile != "" {
		if err := p.writeMemProfile(); err != nil {
			dlog.Client.Error("Unable to write memory profile", err)
		}
		p.memProfile = ""
	}
}

func (p *Profiler) writeMemProfile() error {
	f, err := os.Create(p.memProfile)
	if err != nil {
		return err
	}
	defer f.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return err
	}
	dlog.Client.Debug("Wrote memory profile", p.memProfile)
	return nil
}

func (p *Profiler) path(kind string) string {
	return filepath.Join(p.cfg.ProfileDir, fmt.Sprintf("%s_%s_%s.prof",
		p.cfg.CommandName, kind, time.Now().Format(timestampLayout)))
}
