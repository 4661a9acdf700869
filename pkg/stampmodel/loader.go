package stampmodel

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FS is the file-system collaborator used to read and persist stamp files.
type FS interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
}

// DirFS stores stamp files as <dir>/<name>.model on the local disk.
type DirFS string

func (d DirFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(string(d), name))
}

func (d DirFS) WriteFile(name string, data []byte) error {
	if err := os.MkdirAll(string(d), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(string(d), name), data, 0o644)
}

// FileName returns the file a model is persisted under.
func FileName(model string) string { return model + ".model" }

// Loader resolves stamp models from an FS, falling back to compiled
// defaults for absent or corrupt files.
type Loader struct {
	fs    FS
	valid func(block uint8) bool
	log   *slog.Logger
	cache map[string]Model
}

// NewLoader creates a loader. valid, if non-nil, rejects records that
// reference unknown blocks. A nil logger discards output.
func NewLoader(fs FS, valid func(block uint8) bool, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		fs:    fs,
		valid: valid,
		log:   log,
		cache: make(map[string]Model),
	}
}

// LoadOrGenerate returns the model stored under name. If the file is
// missing or corrupt the default records are returned and written back;
// a failed write is logged and otherwise ignored.
func (l *Loader) LoadOrGenerate(name string, def []Record) Model {
	if m, ok := l.cache[name]; ok {
		return m
	}

	records, err := l.read(name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.log.Warn("stamp model unreadable, regenerating", "model", name, "error", err)
		}
		records = append([]Record(nil), def...)
		if werr := l.fs.WriteFile(FileName(name), Encode(records)); werr != nil {
			l.log.Warn("could not persist stamp model", "model", name, "error", werr)
		}
	}

	m := Model{Name: name, Records: records}
	l.cache[name] = m
	return m
}

func (l *Loader) read(name string) ([]Record, error) {
	data, err := l.fs.ReadFile(FileName(name))
	if err != nil {
		return nil, err
	}
	records, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if l.valid != nil {
		for i, r := range records {
			if !l.valid(r.Block) {
				return nil, fmt.Errorf("%w: record %d references unknown block %d", ErrCorrupt, i, r.Block)
			}
		}
	}
	return records, nil
}
