package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/expenso-dev/expenso/internal/model"
)

// ErrNotFound is returned when an expense ID is not in the ledger.
var ErrNotFound = errors.New("expense not found")

// File is the ledger path relative to the repo root.
const File = "ledger/expenses.csv"

// Service reads and writes the expense ledger. It is safe for concurrent use
// within one process.
type Service struct {
	repoRoot string
	mu       sync.Mutex
}

// NewService creates a ledger Service rooted at repoRoot.
func NewService(repoRoot string) *Service {
	return &Service{repoRoot: repoRoot}
}

// Path returns the absolute path of expenses.csv.
func (s *Service) Path() string {
	return filepath.Join(s.repoRoot, File)
}

// Init creates an empty ledger with a header if none exists.
func (s *Service) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.Path()); err == nil {
		return nil
	}
	return s.write(nil)
}

// All returns every expense in file order.
func (s *Service) All() ([]model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Month returns the expenses dated in the given year and month.
func (s *Service) Month(year, month int) ([]model.Expense, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	return InMonth(all, year, month), nil
}

// Add appends expenses to the ledger, creating it if needed.
func (s *Service) Add(expenses ...model.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendExpenses(expenses)
}

// Import appends incoming expenses, dropping those already recorded when
// dedupe is set. Returns what was written.
func (s *Service) Import(incoming []model.Expense, dedupe bool) ([]model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dedupe {
		existing, err := s.read()
		if err != nil {
			return nil, err
		}
		incoming = Deduplicate(existing, incoming)
	}
	if err := s.appendExpenses(incoming); err != nil {
		return nil, err
	}
	return incoming, nil
}

// Delete removes the expense with the given ID.
func (s *Service) Delete(expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	kept := all[:0]
	found := false
	for _, e := range all {
		if e.ID == expenseID {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return fmt.Errorf("%s: %w", expenseID, ErrNotFound)
	}
	return s.write(kept)
}

// Total returns the sum of every expense in the ledger.
func (s *Service) Total() (Summary, error) {
	all, err := s.All()
	if err != nil {
		return Summary{}, err
	}
	return Summarize(all), nil
}

// MonthTotal summarizes the expenses of one month.
func (s *Service) MonthTotal(year, month int) (Summary, error) {
	expenses, err := s.Month(year, month)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(expenses), nil
}

func (s *Service) read() ([]model.Expense, error) {
	path := s.Path()
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	expenses, err := ReadExpenses(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return expenses, nil
}

func (s *Service) appendExpenses(expenses []model.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendExpenses(f, expenses); err != nil {
		return fmt.Errorf("appending expenses: %w", err)
	}
	return nil
}

// write replaces the ledger contents atomically.
func (s *Service) write(expenses []model.Expense) error {
	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteExpenses(&buf, expenses); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}
