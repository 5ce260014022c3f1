package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

// applyConfig loads a JSONC workload profile whose keys are flag names and
// applies every value whose flag was not set on the command line.
func applyConfig(fs *flag.FlagSet, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("invalid JSON %s: %w", path, err)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("config %s: unknown key %q", path, name)
		}
		if f.Changed {
			continue
		}
		if err := fs.Set(name, fmt.Sprint(raw[name])); err != nil {
			return fmt.Errorf("config %s: %s: %w", path, name, err)
		}
	}
	return nil
}

// report is the machine-readable summary of one run.
type report struct {
	Engine    string  `json:"engine"`
	Workers   int     `json:"workers"`
	Keys      int     `json:"keys"`
	Seconds   float64 `json:"seconds"`
	Ops       uint64  `json:"ops"`
	OpsPerSec float64 `json:"ops_per_sec"`
	Reads     uint64  `json:"reads"`
	Writes    uint64  `json:"writes"`
	Deletes   uint64  `json:"deletes"`
	Failed    uint64  `json:"failed"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Entries   int     `json:"entries"`

	// Off-heap engine only.
	Evictions  uint64 `json:"evictions,omitempty"`
	LiveBytes  int64  `json:"live_bytes,omitempty"`
	AllocFails uint64 `json:"alloc_fails,omitempty"`
}

// writeReport replaces path with r as indented JSON. Readers never see a
// partially written file.
func writeReport(path string, r report) error {
	buf, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	buf = append(buf, '\n')
	if err := atomic.WriteFile(path, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
