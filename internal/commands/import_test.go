package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenso-dev/expenso/internal/importlog"
	"github.com/expenso-dev/expenso/internal/ledger"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runExpenso(t, "init", dir, "--name", "Asha", "--no-git")
	require.NoError(t, err, out)
	return dir
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return path
}

func readLedger(t *testing.T, dir string) int {
	t.Helper()
	all, err := ledger.NewService(dir).All()
	require.NoError(t, err)
	return len(all)
}

func TestImportStatement(t *testing.T) {
	dir := initRepo(t)

	out, err := runExpenso(t, "import", "statement", "--repo", dir, fixture(t, "hdfc_statement.csv"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "hdfc_statement.csv: 6 transactions, imported 5, skipped 1")
	assert.Equal(t, 5, readLedger(t, dir))

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].Imported)

	// Re-import is deduplicated.
	out, err = runExpenso(t, "import", "statement", "--repo", dir, fixture(t, "hdfc_statement.csv"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported 0, skipped 6")
	assert.Equal(t, 5, readLedger(t, dir))
}

func TestImportStatement_DryRun(t *testing.T) {
	dir := initRepo(t)

	out, err := runExpenso(t, "import", "statement", "--repo", dir, "--dry-run", fixture(t, "sbi_statement.csv"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "would import 2")
	assert.Contains(t, out, "Food")
	assert.Equal(t, 0, readLedger(t, dir))
}

func TestImportStatement_Unsupported(t *testing.T) {
	dir := initRepo(t)
	out, err := runExpenso(t, "import", "statement", "--repo", dir, "statement.pdf")
	require.Error(t, err)
	assert.Contains(t, out, "unsupported file type")
}

func TestImportEmail_Flags(t *testing.T) {
	dir := initRepo(t)

	out, err := runExpenso(t, "import", "email", "--repo", dir,
		"--subject", "Payment Successful",
		"--body", "Rs. 499.00 debited for UPI transfer to Swiggy on 05/03/2024. UPI Ref No: 123456789")
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 transactions, imported 1")
	assert.Equal(t, 1, readLedger(t, dir))
}

func TestImportEmail_Files(t *testing.T) {
	dir := initRepo(t)

	out, err := runExpenso(t, "import", "email", "--repo", dir,
		fixture(t, filepath.Join("emails", "hdfc_upi.eml")),
		fixture(t, filepath.Join("emails", "newsletter.eml")))
	require.NoError(t, err, out)
	assert.Contains(t, out, "hdfc_upi.eml: 1 transactions, imported 1")
	assert.Contains(t, out, "newsletter.eml: 0 transactions")
	assert.Equal(t, 1, readLedger(t, dir))
}

func TestImportEmail_RequiresInput(t *testing.T) {
	dir := initRepo(t)
	_, err := runExpenso(t, "import", "email", "--repo", dir)
	require.Error(t, err)
}

func TestImportScan(t *testing.T) {
	dir := initRepo(t)
	data, err := os.ReadFile(fixture(t, "sbi_statement.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "march.csv"), data, 0o644))

	out, err := runExpenso(t, "import", "scan", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "march.csv: 3 transactions, imported 2")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "march.csv"))
	require.NoError(t, err)

	out, err = runExpenso(t, "import", "scan", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Nothing to import")
}

func TestImport_RepoFromEnv(t *testing.T) {
	dir := initRepo(t)

	cmdOut, err := runWithEnv(t, []string{"EXPENSO_REPO=" + dir},
		"import", "statement", fixture(t, "sbi_statement.csv"))
	require.NoError(t, err, cmdOut)
	assert.Equal(t, 2, readLedger(t, dir))
}
