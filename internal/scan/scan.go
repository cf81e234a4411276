// Package scan provides the lexical compliance scanner: a textual
// inspection of the lifecycle engine's source for disallowed API names.
//
// The scan is explicitly a heuristic. Matching source text proves nothing
// about semantics - only that forbidden identifiers do or do not appear in
// the implementation. The structural guarantee lives in the sealed
// capability set enforced at manifestation; this scanner is the auxiliary
// check on top of it.
package scan

import (
	"bufio"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Finding is one occurrence of a disallowed substring.
type Finding struct {
	// File is the fs-relative path of the offending source file.
	File string

	// Line is the 1-based line number of the match.
	Line int

	// Needle is the disallowed substring that matched.
	Needle string
}

// String implements fmt.Stringer.
func (f Finding) String() string {
	return fmt.Sprintf("%s:%d: disallowed %q", f.File, f.Line, f.Needle)
}

// DefaultDenylist returns the standard disallowed substrings: recurring
// timers beyond the single dissolution timer, persistent-storage APIs, and
// tracking identifiers.
func DefaultDenylist() []string {
	return []string{
		// Recurring timers. The engine gets exactly one fire-once timer.
		"time.NewTicker",
		"time.Tick(",
		// Persistent storage. The engine never owns a store.
		"os.WriteFile",
		"os.Create",
		"os.OpenFile",
		"sql.Open",
		"badger.Open",
		// Tracking identifiers.
		"analytics",
		"telemetry",
	}
}

// Scanner inspects Go source text for disallowed substrings.
type Scanner struct {
	needles []string
}

// New creates a scanner with the given denylist. An empty argument list
// uses DefaultDenylist.
func New(needles ...string) *Scanner {
	if len(needles) == 0 {
		needles = DefaultDenylist()
	}
	return &Scanner{needles: needles}
}

// ScanFS walks fsys and scans every non-test .go file. Findings are
// ordered by file walk order, then line. An empty slice signals
// compliance.
func (s *Scanner) ScanFS(fsys fs.FS) ([]Finding, error) {
	var findings []Finding
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(p, ".go") || strings.HasSuffix(p, "_test.go") {
			return nil
		}
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		findings = append(findings, s.ScanSource(path.Clean(p), src)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findings, nil
}

// ScanSource scans a single source text. The name is echoed into the
// findings; it is not opened.
func (s *Scanner) ScanSource(name string, src []byte) []Finding {
	var findings []Finding
	sc := bufio.NewScanner(strings.NewReader(string(src)))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		for _, needle := range s.needles {
			if strings.Contains(text, needle) {
				findings = append(findings, Finding{
					File:   name,
					Line:   line,
					Needle: needle,
				})
			}
		}
	}
	return findings
}
