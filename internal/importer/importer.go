package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/expenso-dev/expenso/internal/model"
)

// ErrUnsupportedFile is returned for files no registered parser handles.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Parser converts one input source into Transactions.
type Parser interface {
	Parse(r io.Reader) ([]model.Transaction, error)
	Format() string
}

// Registry holds named parsers and the file extensions they accept.
type Registry struct {
	parsers    map[string]Parser
	extensions map[string]string // ".csv" -> "statement"
}

// FileInfo describes a file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers:    make(map[string]Parser),
		extensions: make(map[string]string),
	}
}

// Register adds a parser for the given extensions. Panics on duplicate
// format or extension.
func (r *Registry) Register(p Parser, extensions ...string) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
	for _, ext := range extensions {
		ext = normalizeExt(ext)
		if _, ok := r.extensions[ext]; ok {
			panic("duplicate parser extension: " + ext)
		}
		r.extensions[ext] = key
	}
}

// ForFile returns the parser registered for name's extension.
func (r *Registry) ForFile(name string) (Parser, error) {
	format, ok := r.extensions[normalizeExt(filepath.Ext(name))]
	if !ok {
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), ErrUnsupportedFile)
	}
	return r.parsers[format], nil
}

// Supports reports whether a parser is registered for name's extension.
func (r *Registry) Supports(name string) bool {
	_, ok := r.extensions[normalizeExt(filepath.Ext(name))]
	return ok
}

// ParseFile opens path and parses it with the parser for its extension.
func (r *Registry) ParseFile(path string) ([]model.Transaction, error) {
	p, err := r.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	txns, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return txns, nil
}

// StatementExtensions are the file extensions accepted as statements.
var StatementExtensions = []string{"csv", "txt"}

// EmailExtensions are the file extensions accepted as raw emails.
var EmailExtensions = []string{"eml"}

// IsSupportedFile reports whether name looks like a statement export.
func IsSupportedFile(name string) bool {
	ext := normalizeExt(filepath.Ext(name))
	for _, e := range StatementExtensions {
		if ext == normalizeExt(e) {
			return true
		}
	}
	return false
}

// DefaultRegistry returns a registry with the given statement and email
// parsers registered under their standard extensions.
func DefaultRegistry(statements *StatementParser, emails *EmailParser) *Registry {
	r := NewRegistry()
	r.Register(statements, StatementExtensions...)
	r.Register(emails, EmailExtensions...)
	return r
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ImportDir is the subdirectory for files waiting to be imported.
const ImportDir = "import"

// ProcessedDir is the subdirectory for imported files.
const ProcessedDir = "import/processed"

// Scan returns files in <repoRoot>/import/ that the registry can parse.
func (r *Registry) Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, ImportDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !r.Supports(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, ImportDir, fileName)
	dstDir := filepath.Join(repoRoot, ProcessedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
