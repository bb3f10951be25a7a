// Package ingest runs parsed input through conversion, dedupe and the ledger.
package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/expenso-dev/expenso/internal/classify"
	"github.com/expenso-dev/expenso/internal/config"
	"github.com/expenso-dev/expenso/internal/gitops"
	"github.com/expenso-dev/expenso/internal/importer"
	"github.com/expenso-dev/expenso/internal/importlog"
	"github.com/expenso-dev/expenso/internal/ledger"
	"github.com/expenso-dev/expenso/internal/logger"
	"github.com/expenso-dev/expenso/internal/model"
)

// Result describes one import run.
type Result struct {
	Kind         importlog.Kind
	File         string
	Transactions []model.Transaction
	Imported     []model.Expense
	Skipped      int // income plus duplicates
	Commit       string
}

// Ingester owns the parsers and the ledger for one repo. Imports are
// serialised so each ledger write, log row and commit land together.
type Ingester struct {
	RepoRoot   string
	Statements *importer.StatementParser
	Emails     *importer.EmailParser
	Registry   *importer.Registry
	Converter  *ledger.Converter
	Ledger     *ledger.Service
	Dedupe     bool
	Git        config.GitConfig
	Log        *zerolog.Logger
	// Now stamps import-log entries; nil uses time.Now.
	Now func() time.Time

	mu sync.Mutex
}

// New wires an Ingester from the repo config and rule tables.
func New(repoRoot string, cfg *config.Config, rules classify.Rules, log *zerolog.Logger) *Ingester {
	set := classify.NewSet(rules, importer.DefaultEmailSource)
	source := cfg.Import.Source
	if source == "" {
		source = importer.DefaultStatementSource
	}
	statements := &importer.StatementParser{Types: set.Types, Source: source, Log: log}
	emails := &importer.EmailParser{Sources: set.Sources, Log: log}

	return &Ingester{
		RepoRoot:   repoRoot,
		Statements: statements,
		Emails:     emails,
		Registry:   importer.DefaultRegistry(statements, emails),
		Converter:  &ledger.Converter{Categories: set.Categories},
		Ledger:     ledger.NewService(repoRoot),
		Dedupe:     cfg.Import.Dedupe,
		Git:        cfg.Git,
		Log:        log,
	}
}

// ImportFile parses path with the parser registered for its extension.
func (in *Ingester) ImportFile(path string, dryRun bool) (Result, error) {
	kind, txns, err := in.parseFile(path)
	if err != nil {
		return Result{}, err
	}
	return in.Record(kind, filepath.Base(path), txns, dryRun)
}

func (in *Ingester) parseFile(path string) (importlog.Kind, []model.Transaction, error) {
	p, err := in.Registry.ForFile(path)
	if err != nil {
		return "", nil, err
	}
	txns, err := in.Registry.ParseFile(path)
	if err != nil {
		return "", nil, err
	}
	return importlog.Kind(p.Format()), txns, nil
}

// ImportEmail parses one email given as subject and body.
func (in *Ingester) ImportEmail(e importer.Email, dryRun bool) (Result, error) {
	return in.Record(importlog.KindEmail, "-", in.Emails.ParseEmail(e), dryRun)
}

// Record converts txns to expenses and, unless dryRun, writes them to the
// ledger, appends an import-log row and commits when auto-commit is on.
func (in *Ingester) Record(kind importlog.Kind, file string, txns []model.Transaction, dryRun bool) (Result, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	res, err := in.record(kind, file, txns, dryRun)
	if err != nil || dryRun {
		return res, err
	}
	res.Commit, err = in.commit(fmt.Sprintf("import: %s %s (+%d expenses)", kind, file, len(res.Imported)))
	return res, err
}

func (in *Ingester) record(kind importlog.Kind, file string, txns []model.Transaction, dryRun bool) (Result, error) {
	log := logger.Or(in.Log)
	expenses := in.Converter.ToExpenses(txns)
	res := Result{Kind: kind, File: file, Transactions: txns}

	if dryRun {
		if in.Dedupe {
			existing, err := in.Ledger.All()
			if err != nil {
				return Result{}, err
			}
			expenses = ledger.Deduplicate(existing, expenses)
		}
		res.Imported = expenses
		res.Skipped = len(txns) - len(expenses)
		return res, nil
	}

	added, err := in.Ledger.Import(expenses, in.Dedupe)
	if err != nil {
		return Result{}, fmt.Errorf("recording %s: %w", file, err)
	}
	res.Imported = added
	res.Skipped = len(txns) - len(added)

	if err := importlog.Append(in.RepoRoot, importlog.Entry{
		Timestamp: in.now(),
		Kind:      kind,
		File:      file,
		Parsed:    len(txns),
		Imported:  len(added),
		Skipped:   res.Skipped,
	}); err != nil {
		return Result{}, err
	}

	log.Info().
		Str("kind", string(kind)).
		Str("file", file).
		Int("parsed", len(txns)).
		Int("imported", len(added)).
		Int("skipped", res.Skipped).
		Msg("import recorded")
	return res, nil
}

// commit snapshots the repo when auto-commit is on and the repo is under git.
func (in *Ingester) commit(msg string) (string, error) {
	if !in.Git.AutoCommit || !gitops.IsRepo(in.RepoRoot) {
		return "", nil
	}
	hash, err := gitops.CommitAll(in.RepoRoot, msg, in.Git.AuthorName, in.Git.AuthorEmail)
	if err != nil {
		return "", fmt.Errorf("committing import: %w", err)
	}
	return hash, nil
}

// Process imports a file waiting in import/ and moves it to
// import/processed/ before committing. Dry runs leave the file in place.
func (in *Ingester) Process(path string, dryRun bool) (Result, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	res, err := in.process(path, dryRun)
	if err != nil || dryRun {
		return res, err
	}
	res.Commit, err = in.commit(fmt.Sprintf("import: %s %s (+%d expenses)", res.Kind, res.File, len(res.Imported)))
	return res, err
}

func (in *Ingester) process(path string, dryRun bool) (Result, error) {
	kind, txns, err := in.parseFile(path)
	if err != nil {
		return Result{}, err
	}
	name := filepath.Base(path)
	res, err := in.record(kind, name, txns, dryRun)
	if err != nil {
		return res, err
	}
	if !dryRun {
		if err := importer.MarkProcessed(in.RepoRoot, name); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Scan imports every supported file in import/ and moves each one to
// import/processed/ after it is recorded. Dry runs move nothing.
func (in *Ingester) Scan(dryRun bool) ([]Result, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	files, err := in.Registry.Scan(in.RepoRoot)
	if err != nil {
		return nil, err
	}
	var results []Result
	imported := 0
	for _, f := range files {
		res, err := in.process(f.Path, dryRun)
		if err != nil {
			return results, err
		}
		imported += len(res.Imported)
		results = append(results, res)
	}

	if dryRun || len(results) == 0 {
		return results, nil
	}
	hash, err := in.commit(fmt.Sprintf("import: scan %d files (+%d expenses)", len(results), imported))
	if err != nil {
		return results, err
	}
	for i := range results {
		results[i].Commit = hash
	}
	return results, nil
}

func (in *Ingester) now() time.Time {
	if in.Now != nil {
		return in.Now()
	}
	return time.Now().UTC().Truncate(time.Second)
}

// Open loads expenso.yaml and the rules file from repoRoot and wires an
// Ingester. A missing config file means defaults.
func Open(repoRoot string, log *zerolog.Logger) (*Ingester, *config.Config, error) {
	cfg, err := LoadConfig(repoRoot)
	if err != nil {
		return nil, nil, err
	}
	in, err := OpenConfig(repoRoot, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return in, cfg, nil
}

// OpenConfig loads the rules file from repoRoot and wires an Ingester with
// an already loaded config.
func OpenConfig(repoRoot string, cfg *config.Config, log *zerolog.Logger) (*Ingester, error) {
	rules, err := classify.LoadRules(filepath.Join(repoRoot, classify.RulesFile))
	if err != nil {
		return nil, err
	}
	return New(repoRoot, cfg, rules, log), nil
}

// LoadConfig reads <repoRoot>/expenso.yaml, falling back to defaults when
// the file does not exist. Environment overrides are applied.
func LoadConfig(repoRoot string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(repoRoot, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(""), nil
	}
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg)
	return cfg, nil
}
