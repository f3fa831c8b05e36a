package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/louib/panbuild/pkg/constants"
	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/projects"
)

// FileStore keeps one YAML document per project, named <id>.yaml.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.NewConfigError("store", "projects directory is empty", nil)
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the record directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file a record with this id is stored in.
func (s *FileStore) Path(id string) string {
	return filepath.Join(s.dir, id+constants.RecordExtension)
}

// Load implements Store. Keys outside the canonical field set are logged
// and dropped.
func (s *FileStore) Load(ctx context.Context, id string) (*projects.Project, error) {
	path := s.Path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, errors.WrapIO("read", path, err)
	}

	p, err := DecodeYAML(ctx, data, path)
	if err != nil {
		return nil, err
	}
	if p.Name != id {
		return nil, errors.NewParseError("yaml", path, fmt.Sprintf("name %q does not match id %q", p.Name, id), nil)
	}
	return p, nil
}

// Save implements Store. The document is written to a temporary file and
// renamed into place.
func (s *FileStore) Save(ctx context.Context, id string, p projects.Project) error {
	p, err := prepare(id, p)
	if err != nil {
		return err
	}

	path := s.Path(id)
	doc, err := p.FormatYAML()
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+id+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(doc); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := os.Chmod(tmp.Name(), constants.FilePermissions); err != nil {
		return errors.WrapIO("chmod", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.WrapIO("rename", path, err)
	}

	logging.FromContext(ctx).Debug().Str("project", id).Str("path", path).Msg("Saved project")
	return nil
}

// List implements Store.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.WrapIO("list", s.dir, err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != constants.RecordExtension {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, constants.RecordExtension))
	}
	slices.Sort(ids)
	return ids, nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

// DecodeYAML parses a stored project document. Unknown keys are dropped
// with a warning and set fields come back sorted and deduplicated.
func DecodeYAML(ctx context.Context, data []byte, file string) (*projects.Project, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapParse("yaml", file, err)
	}
	if raw == nil {
		return nil, errors.NewParseError("yaml", file, "empty document", nil)
	}

	var unknown []string
	for key := range raw {
		if !projects.IsField(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		logging.FromContext(ctx).Warn().
			Str("file", file).
			Strs("keys", unknown).
			Msg("Dropping unknown keys")
	}

	var p projects.Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.WrapParse("yaml", file, err)
	}
	p = p.Normalized()
	if err := p.Validate(); err != nil {
		return nil, errors.NewParseError("yaml", file, "missing name", err)
	}
	return &p, nil
}
