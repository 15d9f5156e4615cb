package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "catpost/internal/errors"
	"catpost/internal/tableio"
)

// FileValidator checks the files and directories a run reads and writes
// before any table is touched.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ExpandInputs resolves glob patterns among inputs into table files, sorted
// and without duplicates. Plain paths are passed through unchanged so that
// a missing file is reported by ValidateTableFile. Excel lock files ("~$")
// are skipped.
func (v *FileValidator) ExpandInputs(inputs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(inputs))
	var out []string
	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	for _, in := range inputs {
		if !strings.ContainsAny(in, "*?[") {
			add(in)
			continue
		}
		matches, err := filepath.Glob(in)
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid input pattern %q: %v", in, err))
		}
		sort.Strings(matches)
		count := 0
		for _, m := range matches {
			if strings.HasPrefix(filepath.Base(m), "~$") {
				v.logger.Warn("Skipping temporary Excel file", slog.String("file", m))
				continue
			}
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			add(m)
			count++
		}
		if count == 0 {
			v.logger.Warn("No files matching pattern found", slog.String("pattern", in))
		}
	}

	if len(out) == 0 {
		return nil, apperrors.NewValidationError("no input tables found")
	}
	v.logger.Debug("Inputs expanded",
		slog.Int("patterns", len(inputs)),
		slog.Int("files", len(out)))
	return out, nil
}

// ValidateTableFile checks path is a readable .csv or .xlsx file.
func (v *FileValidator) ValidateTableFile(path string) error {
	if _, err := tableio.FormatOf(path); err != nil {
		v.logger.Error("File is not a table file",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("cannot access input table", err).WithContext("path", path)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("input table is not readable", err).WithContext("path", path)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateTableFiles validates every path and reports the first failure.
func (v *FileValidator) ValidateTableFiles(paths []string) error {
	for _, p := range paths {
		if err := v.ValidateTableFile(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to create output directory", err).WithContext("path", dir)
	}

	// Verify it's writable by creating a test file
	file, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("output directory is not writable", err).WithContext("path", dir)
	}
	file.Close()
	os.Remove(file.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
