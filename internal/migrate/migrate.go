// Package migrate scaffolds database revision files for the library
// backend's schema. Each revision carries an identity header (revision id,
// the revision it revises, branch labels, dependencies) and the up/down
// callback stubs an external migration tool fills in and applies. Nothing
// here executes SQL against a database.
package migrate

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

//go:embed templates/revision.sql.tmpl
var revisionTemplate string

var tmpl = template.Must(template.New("revision").Parse(revisionTemplate))

const revisionTimeFormat = "20060102150405"

// Revision is the parsed identity header of one migration file.
type Revision struct {
	ID           string
	Revises      string
	BranchLabels []string
	DependsOn    []string
	Message      string
	Filename     string
}

type templateFields struct {
	ID           string
	Revises      string
	BranchLabels string
	DependsOn    string
	Message      string
}

// New scaffolds the next revision file in dir and returns its path. The
// revision id is a UTC timestamp and the parent is the current head, so
// successive calls form a single linear history.
func New(dir, message string) (string, error) {
	head, err := Head(dir)
	if err != nil {
		return "", err
	}

	parent := ""
	if head != nil {
		parent = head.ID
	}

	id := newID(parent)
	name := id + ".sql"
	if slug := slugify(message); slug != "" {
		name = id + "_" + slug + ".sql"
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, templateFields{
		ID:      id,
		Revises: parent,
		Message: message,
	})
	if err != nil {
		return "", fmt.Errorf("render revision template: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create migrations dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write revision %s: %w", path, err)
	}
	return path, nil
}

// List parses every revision header in dir, oldest first. A missing dir
// lists as empty.
func List(dir string) ([]Revision, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations dir %s: %w", dir, err)
	}

	var revisions []Revision
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		rev, err := parseFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		rev.Filename = entry.Name()
		revisions = append(revisions, *rev)
	}

	sort.Slice(revisions, func(i, j int) bool {
		return revisions[i].ID < revisions[j].ID
	})
	return revisions, nil
}

// Head returns the newest revision, or nil when dir holds none.
func Head(dir string) (*Revision, error) {
	revisions, err := List(dir)
	if err != nil || len(revisions) == 0 {
		return nil, err
	}
	return &revisions[len(revisions)-1], nil
}

func parseFile(path string) (*Revision, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open revision %s: %w", path, err)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()

	rev := &Revision{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		rest, ok := strings.CutPrefix(line, "--")
		if !ok {
			break
		}
		key, value, ok := strings.Cut(rest, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "Revision":
			rev.ID = value
		case "Revises":
			rev.Revises = value
		case "Branch-Labels":
			rev.BranchLabels = splitList(value)
		case "Depends-On":
			rev.DependsOn = splitList(value)
		case "Message":
			rev.Message = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read revision %s: %w", path, err)
	}
	if rev.ID == "" {
		return nil, fmt.Errorf("revision %s has no Revision header", path)
	}
	return rev, nil
}

// newID keeps ids strictly increasing even when two revisions are
// scaffolded within the same second.
func newID(after string) string {
	id := time.Now().UTC().Format(revisionTimeFormat)
	if after != "" && id <= after {
		if n, err := strconv.ParseInt(after, 10, 64); err == nil {
			return strconv.FormatInt(n+1, 10)
		}
	}
	return id
}

func slugify(message string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(message) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	if len(slug) > 40 {
		slug = slug[:40]
	}
	return slug
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
