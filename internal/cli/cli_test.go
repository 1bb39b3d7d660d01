package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/aggql/internal/config"
)

const salesYAML = `
table: sales
definition:
  rows:
    - columnName: region
      filterType: "="
      values: [EU, "#NULL"]
  values:
    - column: amount
      aggType: sum
catalog:
  region: VARCHAR
  amount: DECIMAL
`

const storeJSON = `{"table":"sales","definition":{"columns":[{"columnName":"store"}],"values":[{"column":"amount","aggType":"count"}]}}`

// isolate runs the command from an empty directory so no .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{config.EnvLogLevel, config.EnvDuckDBPath, config.EnvSubqueryAlias, config.EnvQuoteIdentifiers, config.EnvBucketSize} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestSQLCmd(t *testing.T) {
	dir := isolate(t)
	sales := writeFile(t, dir, "sales.yaml", salesYAML)

	out, stderr, code := execute(t, "sql", sales)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "SELECT region, SUM(amount) FROM sales WHERE (region IN ('EU') OR region IS NULL) GROUP BY region\n", out)

	out, stderr, code = execute(t, "sql", "--dimension", "region", sales)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "SELECT region FROM sales GROUP BY region\n", out)
}

func TestSQLCmd_ManyFiles(t *testing.T) {
	dir := isolate(t)
	sales := writeFile(t, dir, "sales.yaml", salesYAML)
	store := writeFile(t, dir, "store.json", storeJSON)

	out, stderr, code := execute(t, "sql", sales, store)
	require.Equal(t, 0, code, stderr)
	salesAt := strings.Index(out, "-- "+sales)
	storeAt := strings.Index(out, "-- "+store)
	require.GreaterOrEqual(t, salesAt, 0)
	assert.Greater(t, storeAt, salesAt)
	assert.Contains(t, out, "SELECT store, COUNT(amount) FROM sales GROUP BY store")

	out, stderr, code = execute(t, "-o", "json", "sql", sales, store)
	require.Equal(t, 0, code, stderr)
	var items []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, store, items[1]["file"])
	assert.Equal(t, "SELECT store, COUNT(amount) FROM sales GROUP BY store", items[1]["sql"])
}

func TestSQLCmd_Stdin(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"sql", "-"})
	cmd.SetIn(strings.NewReader(storeJSON))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "SELECT store, COUNT(amount) FROM sales GROUP BY store\n", stdout.String())

	_, _, code := execute(t, "sql", "-", "-")
	assert.Equal(t, 1, code)
}

func TestSQLCmd_Errors(t *testing.T) {
	dir := isolate(t)
	bad := writeFile(t, dir, "bad.json", `{"table":"sales","definition":{"rows":[{"columnName":"region","filterType":"=","values":["EU"]}]},"catalog":{"amount":"INTEGER"}}`)

	_, stderr, code := execute(t, "sql", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")
	assert.Contains(t, stderr, "region")

	_, stderr, code = execute(t, "sql", filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "missing.yaml")

	_, _, code = execute(t, "-o", "xml", "version")
	assert.Equal(t, 1, code)
}

func TestDSLCmd(t *testing.T) {
	dir := isolate(t)
	sales := writeFile(t, dir, "sales.yaml", salesYAML)

	out, stderr, code := execute(t, "dsl", sales)
	require.Equal(t, 0, code, stderr)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "bool")

	out, stderr, code = execute(t, "dsl", "--search", sales)
	require.Equal(t, 0, code, stderr)
	doc = nil
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "aggs")
}

func TestRunCmd(t *testing.T) {
	dir := isolate(t)
	request := writeFile(t, dir, "request.json", `{"table":"sales","definition":{"rows":[{"columnName":"region"}],"values":[{"column":"amount","aggType":"sum"}]}}`)
	script := writeFile(t, dir, "init.sql", `
CREATE TABLE sales (region VARCHAR, amount INTEGER);
INSERT INTO sales VALUES ('EU', 10), ('EU', 5), (NULL, 3);
`)

	out, stderr, code := execute(t, "run", "--init", script, request)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "region")
	assert.Contains(t, out, "sum_amount")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")

	out, stderr, code = execute(t, "-o", "json", "run", "--init", script, request)
	require.Equal(t, 0, code, stderr)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
}

func TestVersionCmd(t *testing.T) {
	isolate(t)
	out, _, code := execute(t, "version")
	require.Equal(t, 0, code)
	assert.Equal(t, "aggql version dev (commit: none)\n", out)
}
