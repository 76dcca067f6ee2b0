package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ontorefine/internal/config"
	"ontorefine/internal/filter"
	"ontorefine/internal/ontology"
)

var (
	// ErrMissingOption is returned when a required option is empty.
	ErrMissingOption = errors.New("missing required option")
	// ErrInputMissing is returned when the input directory does not exist.
	ErrInputMissing = errors.New("input directory does not exist")
	// ErrInputEmpty is returned when the input directory holds no documents.
	ErrInputEmpty = errors.New("input directory is empty")
	// ErrOutputExists is returned when an output directory already exists.
	ErrOutputExists = errors.New("output directory already exists")
)

// Options describe one refinement run.
type Options struct {
	InputDir   string
	ConfigPath string
	RefineDir  string
	EnumDir    string
	Name       string

	Format         ontology.Format
	Jobs           int
	MaxDiagnostics int
	Progress       ProgressSink
}

// Plan is a vetted run: configuration loaded, hook resolved, input listed.
// Nothing has been written yet.
type Plan struct {
	Options Options
	Config  *config.Config
	Hook    filter.Excluder
	Files   []string
}

// Prepare checks opts and loads everything a run needs. It creates no
// files; a failing Prepare leaves the file system untouched.
func Prepare(opts Options) (*Plan, error) {
	required := []struct{ flag, value string }{
		{"input", opts.InputDir},
		{"config", opts.ConfigPath},
		{"refine", opts.RefineDir},
		{"enum", opts.EnumDir},
		{"name", opts.Name},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, fmt.Errorf("%w: --%s", ErrMissingOption, r.flag)
		}
	}

	info, err := os.Stat(opts.InputDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInputMissing, opts.InputDir)
	}
	files, err := listInputFiles(opts.InputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInputEmpty, opts.InputDir)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	hook, err := filter.Hook(cfg.UserProcedure)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", opts.ConfigPath, config.ErrInvalid, err)
	}

	for _, dir := range []string{opts.RefineDir, opts.EnumDir} {
		if _, err := os.Stat(dir); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrOutputExists, dir)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 10000
	}
	return &Plan{Options: opts, Config: cfg, Hook: hook, Files: files}, nil
}

// listInputFiles returns the documents directly under dir, sorted. Hidden
// entries and sub-directories are skipped.
func listInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}
