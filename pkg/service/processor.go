package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/openmf/bankimport/pkg/accounts"
	"github.com/openmf/bankimport/pkg/config"
	"github.com/openmf/bankimport/pkg/importer"
	"github.com/openmf/bankimport/pkg/importer/audi"
	"github.com/openmf/bankimport/pkg/importer/mpesa"
	"github.com/openmf/bankimport/pkg/models"
)

// Importer names accepted in config and on the command line.
const (
	ImporterAudiTSV        = "audi-tsv"
	ImporterAudiXLS        = "audi-xls"
	ImporterMPesa          = "mpesa"
	ImporterMPesaDisbursal = "mpesa-disbursement"
)

// Processor runs statement files through the right importer and writes the
// parsed payments out as CSV.
type Processor struct {
	cfg     *config.Config
	service accounts.Service
	logger  *log.Logger
}

func NewProcessor(cfg *config.Config, service accounts.Service, logger *log.Logger) *Processor {
	return &Processor{cfg: cfg, service: service, logger: logger}
}

// ProcessDirectory parses every statement file in dir. A failing file is
// logged and does not stop the others.
func (p *Processor) ProcessDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("error reading directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := p.ProcessFile(filepath.Join(dir, entry.Name())); err != nil {
			p.logger.Error("failed to process file", "file", entry.Name(), "error", err)
		}
	}
	return nil
}

// ProcessFile parses one statement file, logs the outcome, and writes the
// successfully parsed payments as CSV.
func (p *Processor) ProcessFile(path string) (*models.ParseResult, error) {
	imp, err := p.ImporterFor(filepath.Base(path))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	p.logger.Info("parsing statement", "file", path, "importer", imp.DisplayName())
	result := imp.Parse(data)

	for _, msg := range result.Errors {
		p.logger.Error(msg, "file", path)
	}
	for _, msg := range result.Ignored {
		p.logger.Warn(msg, "file", path)
	}
	p.logger.Info("parsed statement",
		"file", path,
		"rows", result.RowsRead,
		"payments", len(result.Payments),
		"errors", len(result.Errors),
		"ignored", result.IgnoredRows,
		"imported", result.TotalImported,
		"disbursed", result.TotalDisbursed,
	)

	if len(result.Payments) > 0 {
		outPath := p.outputPath(path)
		if err := p.writePayments(outPath, result.Payments); err != nil {
			return result, err
		}
		p.logger.Info("wrote payments", "output", outPath)
	}
	return result, nil
}

// ImporterFor picks the importer from config, falling back to filename
// detection.
func (p *Processor) ImporterFor(filename string) (importer.Importer, error) {
	name := p.cfg.Importer
	if name == "" {
		name = detectImporter(filename)
	}
	imp, err := p.ImporterByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown importer for %q", filename)
	}
	return imp, nil
}

// ImporterByName builds the importer for one of the accepted names.
func (p *Processor) ImporterByName(name string) (importer.Importer, error) {
	switch name {
	case ImporterAudiTSV:
		return audi.NewTSVImporter(p.service, p.logger), nil
	case ImporterAudiXLS:
		return audi.NewXLSImporter(p.service, p.logger), nil
	case ImporterMPesa, ImporterMPesaDisbursal:
		opts, err := p.cfg.MPesaOptions()
		if err != nil {
			return nil, err
		}
		if name == ImporterMPesaDisbursal {
			return mpesa.NewDisbursementImporter(p.service, p.logger, opts), nil
		}
		return mpesa.NewImporter(p.service, p.logger, opts), nil
	default:
		return nil, fmt.Errorf("unknown importer %q", name)
	}
}

func detectImporter(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.Contains(lower, "disburse"):
		return ImporterMPesaDisbursal
	case strings.Contains(lower, "mpesa") || strings.Contains(lower, "m-pesa"):
		return ImporterMPesa
	case strings.HasSuffix(lower, ".tsv") || strings.HasSuffix(lower, ".txt"):
		return ImporterAudiTSV
	case strings.HasSuffix(lower, ".xls") || strings.HasSuffix(lower, ".xlsx"):
		return ImporterAudiXLS
	default:
		return ""
	}
}

func (p *Processor) outputPath(inputPath string) string {
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "-payments.csv"
	if p.cfg.OutputPath != "" {
		return filepath.Join(p.cfg.OutputPath, name)
	}
	return filepath.Join(filepath.Dir(inputPath), name)
}

func (p *Processor) writePayments(path string, payments []models.Payment) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer out.Close()

	if err := WritePaymentsCSV(out, payments); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	return nil
}
