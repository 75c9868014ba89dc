package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

// Build packs the given files into an in-memory flat zip archive. Entries are
// named by base filename only; files that do not exist are skipped.
func Build(paths []string) ([]byte, []string, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	included := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			_ = w.Close()
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}

		entry, err := w.Create(filepath.Base(path))
		if err != nil {
			_ = w.Close()
			return nil, nil, fmt.Errorf("create zip entry %s: %w", path, err)
		}
		if _, err := entry.Write(data); err != nil {
			_ = w.Close()
			return nil, nil, fmt.Errorf("write zip entry %s: %w", path, err)
		}
		included = append(included, filepath.Base(path))
	}

	if err := w.Close(); err != nil {
		return nil, nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), included, nil
}

// Extract unpacks a flat archive into destDir, overwriting same-named files.
// Entry names carrying path separators or parent references are rejected.
func Extract(data []byte, destDir string) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCorruptArchive.Code, appErrors.ErrCorruptArchive.Status, appErrors.ErrCorruptArchive.Message)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination %s: %w", destDir, err)
	}

	for _, entry := range r.File {
		name := entry.Name
		if name != filepath.Base(name) || name == ".." || name == "." {
			return appErrors.Clone(appErrors.ErrCorruptArchive, fmt.Sprintf("unsafe archive entry %q", name))
		}

		src, err := entry.Open()
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrCorruptArchive.Code, appErrors.ErrCorruptArchive.Status, fmt.Sprintf("open archive entry %q", name))
		}

		target := filepath.Join(destDir, name)
		dst, err := os.Create(target)
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("create %s: %w", target, err)
		}

		_, copyErr := io.Copy(dst, src)
		_ = src.Close()
		if closeErr := dst.Close(); copyErr == nil {
			copyErr = closeErr
		}
		if copyErr != nil {
			return fmt.Errorf("extract %s: %w", target, copyErr)
		}
	}

	return nil
}
