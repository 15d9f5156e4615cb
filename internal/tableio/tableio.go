package tableio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "catpost/internal/errors"
	"catpost/internal/table"
)

// Load reads a CSV or XLSX table from path. Only opts.Logger is used.
func Load(path string, opts Options) (*table.Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open table", err).WithContext("path", path)
	}
	defer file.Close()

	var tbl *table.Table
	switch format {
	case FormatXLSX:
		tbl, err = ReadXLSX(file)
	default:
		tbl, err = ReadCSV(file)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	opts.logger().Debug("Loaded table",
		slog.String("path", path),
		slog.Int("rows", tbl.Len()),
		slog.Int("columns", len(tbl.Columns())))
	return tbl, nil
}

// Save writes tbl to path in the format implied by its extension, creating
// parent directories as needed. The file is replaced atomically.
func Save(path string, tbl *table.Table, opts Options) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return apperrors.NewStorageError("failed to create file", err).WithContext("path", path)
	}
	defer os.Remove(tmp.Name())

	switch format {
	case FormatXLSX:
		err = WriteXLSX(tmp, tbl, opts)
	default:
		err = WriteCSV(tmp, tbl, opts)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return apperrors.NewStorageError("failed to replace file", err).WithContext("path", path)
	}

	opts.logger().Info("Saved table",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", tbl.Len()),
		slog.Bool("sigma", opts.Sigma))
	return nil
}
