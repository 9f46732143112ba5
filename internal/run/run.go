// Package run manages the per-invocation output directory and its
// manifest.json listing every artifact a command wrote.
package run

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind names the command that produced a run.
type Kind string

const (
	KindSales     Kind = "sales"
	KindCustomers Kind = "customers"
	KindDescribe  Kind = "describe"
)

// Artifact kinds.
const (
	ArtifactChart    = "chart"
	ArtifactReport   = "report"
	ArtifactWorkbook = "workbook"
)

// ErrNotFound is returned when no run matches an id.
var ErrNotFound = errors.New("run not found")

// Run is one command invocation persisted on disk.
type Run struct {
	ID        string            `json:"id"`
	UUID      string            `json:"uuid"`
	Kind      Kind              `json:"kind"`
	Input     string            `json:"input"`
	Params    map[string]string `json:"params,omitempty"`
	Artifacts []Artifact        `json:"artifacts"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Not serialized: on-disk location of the manifest.json
	rootDir string `json:"-"`
}

// Artifact is a file written into the run directory.
type Artifact struct {
	Kind  string `json:"kind"`
	Path  string `json:"path"` // relative to the run directory
	Bytes int64  `json:"bytes"`
}

// New creates <outputDir>/<kind>-<yyyymmdd-hhmmss>-<uuid8>. Call Save() to
// persist the manifest.
func New(outputDir string, kind Kind, input string, now time.Time) (*Run, error) {
	id := uuid.New()
	name := fmt.Sprintf("%s-%s-%s", kind, now.Format("20060102-150405"), id.String()[:8])
	dir := filepath.Join(outputDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	if abs, err := filepath.Abs(input); err == nil {
		input = abs
	}
	return &Run{
		ID:        name,
		UUID:      id.String(),
		Kind:      kind,
		Input:     input,
		Params:    map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
		rootDir:   dir,
	}, nil
}

// Load reads the manifest.json in dir.
func Load(dir string) (*Run, error) {
	path := filepath.Join(dir, manifestFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var r Run
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	r.rootDir = dir
	return &r, nil
}

// RootDir returns the on-disk run directory path.
func (r *Run) RootDir() string { return r.rootDir }

// Path joins elem onto the run directory.
func (r *Run) Path(elem ...string) string {
	return filepath.Join(append([]string{r.rootDir}, elem...)...)
}

// SetParam records an effective setting of the run.
func (r *Run) SetParam(key, value string) {
	if r.Params == nil {
		r.Params = map[string]string{}
	}
	r.Params[key] = value
}

// AddArtifact records an existing file. Paths inside the run directory are
// stored relative to it.
func (r *Run) AddArtifact(kind, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}
	rel := r.Rel(path)
	for i, a := range r.Artifacts {
		if a.Path == rel {
			r.Artifacts[i] = Artifact{Kind: kind, Path: rel, Bytes: info.Size()}
			return nil
		}
	}
	r.Artifacts = append(r.Artifacts, Artifact{Kind: kind, Path: rel, Bytes: info.Size()})
	r.UpdatedAt = time.Now()
	return nil
}

// WriteArtifact writes data to name inside the run directory and records it.
func (r *Run) WriteArtifact(kind, name string, data []byte) (string, error) {
	path := r.Path(name)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, r.AddArtifact(kind, path)
}

// Save writes manifest.json using atomic write.
func (r *Run) Save() error {
	if r.rootDir == "" {
		return errors.New("run directory not set")
	}
	r.UpdatedAt = time.Now()
	data, err := r.JSON()
	if err != nil {
		return err
	}
	return writeFileAtomic(r.Path(manifestFile), data)
}

// List loads every run under outputDir, newest first. Directories without a
// readable manifest are skipped.
func List(outputDir string) ([]*Run, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output dir: %w", err)
	}
	var runs []*Run
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		r, err := Load(filepath.Join(outputDir, e.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, r)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	return runs, nil
}

// Find resolves a run by directory name, uuid, or unique prefix of either.
// A path to a run directory (or a file inside one) also works.
func Find(outputDir, ref string) (*Run, error) {
	if _, err := os.Stat(ref); err == nil {
		if root, err := rootOf(ref); err == nil {
			return Load(root)
		}
	}
	runs, err := List(outputDir)
	if err != nil {
		return nil, err
	}
	var match []*Run
	for _, r := range runs {
		if r.ID == ref || r.UUID == ref {
			return r, nil
		}
		if strings.HasPrefix(r.ID, ref) || strings.HasPrefix(r.UUID, ref) {
			match = append(match, r)
		}
	}
	switch len(match) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return match[0], nil
	}
	return nil, fmt.Errorf("ambiguous run id %q matches %d runs", ref, len(match))
}
