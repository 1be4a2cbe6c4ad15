// Package result inspects the evaluator's checkpoint/result JSON. It only
// reads what the evaluator wrote; it never computes scores.
package result

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

const maxResultBytes = 64 << 20

// FailStatuses are record statuses the evaluator writes for routes that did
// not run to completion.
var FailStatuses = map[string]struct{}{
	"Failed - Agent couldn't be set up": {},
	"Failed":                            {},
	"Failed - Simulation crashed":       {},
	"Failed - Agent crashed":            {},
}

// Record is one route entry of the checkpoint.
type Record struct {
	Index   int    `json:"index"`
	RouteID string `json:"route_id"`
	Status  string `json:"status"`
}

type checkpoint struct {
	Progress []int    `json:"progress"`
	Records  []Record `json:"records"`
}

type document struct {
	Checkpoint  *checkpoint `json:"_checkpoint"`
	EntryStatus string      `json:"entry_status"`
}

// Summary is the read-only view of a result file.
type Summary struct {
	Path        string
	Exists      bool
	Done        int
	Total       int
	Records     int
	EntryStatus string
	Failed      []Record
	Complete    bool
	// Reason explains why the route is not complete.
	Reason string
}

// Inspect reads path and decides whether the route finished. A missing or
// malformed file is reported as incomplete, not as an error; only unexpected
// I/O failures return an error.
func Inspect(path string) (Summary, error) {
	s := Summary{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.Reason = "result file does not exist"
			return s, nil
		}
		return s, fmt.Errorf("stat result file: %w", err)
	}
	s.Exists = true
	if info.Size() > maxResultBytes {
		s.Reason = fmt.Sprintf("result file too large (%d bytes)", info.Size())
		return s, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the resolved layout
	if err != nil {
		return s, fmt.Errorf("read result file: %w", err)
	}
	return Parse(path, data), nil
}

// Parse evaluates raw result JSON.
func Parse(path string, data []byte) Summary {
	s := Summary{Path: path, Exists: true}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.Reason = "result file is not valid JSON: " + firstLine(err.Error())
		return s
	}
	s.EntryStatus = doc.EntryStatus
	if doc.Checkpoint == nil {
		s.Reason = "result file has no _checkpoint section"
		return s
	}

	cp := doc.Checkpoint
	s.Records = len(cp.Records)
	for _, rec := range cp.Records {
		if _, failed := FailStatuses[rec.Status]; failed {
			s.Failed = append(s.Failed, rec)
		}
	}

	if len(cp.Progress) < 2 {
		s.Reason = "progress is missing"
		return s
	}
	s.Done, s.Total = cp.Progress[0], cp.Progress[1]
	if s.Done < s.Total {
		s.Reason = fmt.Sprintf("progress %d/%d", s.Done, s.Total)
		return s
	}
	if len(s.Failed) > 0 {
		s.Reason = fmt.Sprintf("%d record(s) failed", len(s.Failed))
		return s
	}

	s.Complete = true
	return s
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
