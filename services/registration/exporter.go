package registration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

//go:generate mockgen -source=exporter.go -package registration -destination exporter_mock.go FileExporter
type FileExporter interface {
	WriteFile(c context.Context, filename string, content string) error
}

type localDirExporter struct {
	dir string
}

func NewLocalDirExporter(dir string) FileExporter {
	return &localDirExporter{
		dir: dir,
	}
}

func (e *localDirExporter) WriteFile(c context.Context, filename string, content string) error {
	err := os.MkdirAll(e.dir, 0o755)
	if err != nil {
		return fmt.Errorf("error creating export dir %s: %s", e.dir, err)
	}

	err = os.WriteFile(filepath.Join(e.dir, filename), []byte(content), 0o644)
	if err != nil {
		return fmt.Errorf("error writing export file %s: %s", filename, err)
	}

	return nil
}
