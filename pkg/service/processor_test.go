package service

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/openmf/bankimport/pkg/accounts"
	"github.com/openmf/bankimport/pkg/config"
)

func TestDetectImporter(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"statement.tsv", ImporterAudiTSV},
		{"statement.txt", ImporterAudiTSV},
		{"statement.xls", ImporterAudiXLS},
		{"Statement.XLSX", ImporterAudiXLS},
		{"mpesa-2010-01.xls", ImporterMPesa},
		{"M-Pesa_export.xlsx", ImporterMPesa},
		{"mpesa-disburse-2010-01.xls", ImporterMPesaDisbursal},
		{"statement.pdf", ""},
	}

	for _, tc := range cases {
		if got := detectImporter(tc.filename); got != tc.want {
			t.Errorf("detectImporter(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestImporterForConfigOverride(t *testing.T) {
	p := NewProcessor(&config.Config{Importer: ImporterMPesa}, &accounts.FixtureService{}, log.Default())

	imp, err := p.ImporterFor("statement.tsv")
	if err != nil {
		t.Fatalf("ImporterFor failed: %v", err)
	}
	if !strings.Contains(imp.DisplayName(), "M-PESA") {
		t.Errorf("display name = %q, want the configured importer to win", imp.DisplayName())
	}
}

func TestImporterForUnknown(t *testing.T) {
	p := NewProcessor(&config.Config{}, &accounts.FixtureService{}, log.Default())

	if _, err := p.ImporterFor("statement.pdf"); err == nil {
		t.Error("expected error for undetectable file")
	}
}

func TestProcessFileWritesCSV(t *testing.T) {
	fixture := `
payment_types:
  - id: 1
    name: Bank Audi sal
loans:
  - id: 21
    internal_id: 1234567
    due: "1000"
`
	svc, err := accounts.ParseFixture([]byte(fixture))
	if err != nil {
		t.Fatalf("ParseFixture failed: %v", err)
	}

	dir := t.TempDir()
	statement := "Bank Audi sal\nAccount statement\nFrom 2010/03/01 to 2010/03/31\n\nheader\n" +
		"2010/03/31\t101\t2010/03/31\tREF\tC\t150.75\t900\tPMTMAJ 1234567  John Doe\n"
	inPath := filepath.Join(dir, "statement.tsv")
	if err := os.WriteFile(inPath, []byte(statement), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	outDir := t.TempDir()
	p := NewProcessor(&config.Config{OutputPath: outDir}, svc, log.Default())

	result, err := p.ProcessFile(inPath)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}

	out, err := os.Open(filepath.Join(outDir, "statement-payments.csv"))
	if err != nil {
		t.Fatalf("output CSV not written: %v", err)
	}
	defer out.Close()

	records, err := csv.NewReader(out).ReadAll()
	if err != nil {
		t.Fatalf("reading output CSV failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 payment, got %d records", len(records))
	}
	if records[1][0] != "21" || records[1][1] != "150.75" {
		t.Errorf("payment record = %v", records[1])
	}
	if records[1][2] != "2010-03-31" {
		t.Errorf("date = %q, want 2010-03-31", records[1][2])
	}
}

func TestProcessDirectoryContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "empty.tsv"), nil, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	p := NewProcessor(&config.Config{OutputPath: t.TempDir()}, &accounts.FixtureService{}, log.Default())
	if err := p.ProcessDirectory(dir); err != nil {
		t.Errorf("ProcessDirectory = %v, want nil despite per-file failures", err)
	}
}
