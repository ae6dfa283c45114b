//go:build blackbox

package blackbox

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

var accountID = regexp.MustCompile(`\(([0-9A-Z]{26})\)`)

func createdID(t *testing.T, out string) string {
	t.Helper()
	m := accountID.FindStringSubmatch(out)
	if len(m) != 2 {
		t.Fatalf("no account id in output:\n%s", out)
	}
	return m[1]
}

type row struct {
	date string
	pnl  float64
}

func writeTradesCSV(t *testing.T, path string, rows []row) {
	t.Helper()

	var b strings.Builder
	b.WriteString("date,pnl,instrument\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s,%.2f,EUR_USD\n", r.date, r.pnl)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
}

func tempPath(t *testing.T, name string) string {
	return filepath.Join(t.TempDir(), name)
}
