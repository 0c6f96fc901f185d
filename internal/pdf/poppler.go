package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/examdocumentflow/internal/logger"
)

var (
	ErrEmptyDocument = errors.New("pdf payload is empty")
	ErrInvalidPDF    = errors.New("document is not a readable pdf")
	ErrPageRange     = errors.New("page index out of range")
)

// Source is an opened PDF. Page indexes are 0-based.
type Source interface {
	PageCount() int
	ExtractText(ctx context.Context, index int) (string, error)
	Render(ctx context.Context, index, dpi int) ([]byte, error)
	Close() error
}

// Opener turns raw PDF bytes into a Source.
type Opener interface {
	Open(ctx context.Context, data []byte) (Source, error)
}

type PopplerConfig struct {
	PdftotextPath  string
	PdftoppmPath   string
	CommandTimeout time.Duration
}

// Poppler validates PDFs with pdfcpu and reads pages with the poppler
// command-line tools.
type Poppler struct {
	cfg    PopplerConfig
	runner Runner
	log    *logger.Logger
}

var disableConfigDir sync.Once

func NewPoppler(cfg PopplerConfig, runner Runner, log *logger.Logger) *Poppler {
	if cfg.PdftotextPath == "" {
		cfg.PdftotextPath = "pdftotext"
	}
	if cfg.PdftoppmPath == "" {
		cfg.PdftoppmPath = "pdftoppm"
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 2 * time.Minute
	}
	if runner == nil {
		runner = ExecRunner{Log: log}
	}
	// pdfcpu would otherwise create a config directory under $HOME.
	disableConfigDir.Do(api.DisableConfigDir)
	return &Poppler{cfg: cfg, runner: runner, log: log.With("service", "pdf.Poppler")}
}

// Open validates data and spools it to a temp file for the poppler tools.
// The returned Source must be closed to remove the temp file.
func (p *Poppler) Open(ctx context.Context, data []byte) (Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pageCount, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	tempDir, err := os.MkdirTemp("", "exam-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	path := filepath.Join(tempDir, "source.pdf")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to spool pdf: %w", err)
	}
	p.log.Debug("Opened pdf", "pageCount", pageCount, "bytes", len(data))
	return &popplerDoc{p: p, dir: tempDir, path: path, pages: pageCount}, nil
}

type popplerDoc struct {
	p     *Poppler
	dir   string
	path  string
	pages int
}

func (d *popplerDoc) PageCount() int { return d.pages }

func (d *popplerDoc) pageArg(index int) (string, error) {
	if index < 0 || index >= d.pages {
		return "", fmt.Errorf("%w: %d of %d", ErrPageRange, index, d.pages)
	}
	return strconv.Itoa(index + 1), nil
}

// ExtractText returns the page's embedded text, empty for scanned pages.
func (d *popplerDoc) ExtractText(ctx context.Context, index int) (string, error) {
	n, err := d.pageArg(index)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, d.p.cfg.CommandTimeout)
	defer cancel()

	// pdftotext -f N -l N -layout -enc UTF-8 -eol unix <in.pdf> -
	out, errb, err := d.p.runner.Run(ctx, d.p.cfg.PdftotextPath,
		"-f", n, "-l", n, "-layout", "-enc", "UTF-8", "-eol", "unix", d.path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext page %s: %w: %s", n, err, truncate(string(errb), 512))
	}
	// pdftotext terminates every page with a form feed.
	return strings.TrimRight(string(out), "\f"), nil
}

// Render rasterises the page to PNG at dpi.
func (d *popplerDoc) Render(ctx context.Context, index, dpi int) ([]byte, error) {
	n, err := d.pageArg(index)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, d.p.cfg.CommandTimeout)
	defer cancel()

	prefix := filepath.Join(d.dir, "page-"+n)
	// pdftoppm -f N -l N -r DPI -png -singlefile <in.pdf> <prefix>
	_, errb, err := d.p.runner.Run(ctx, d.p.cfg.PdftoppmPath,
		"-f", n, "-l", n, "-r", strconv.Itoa(dpi), "-png", "-singlefile", d.path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm page %s: %w: %s", n, err, truncate(string(errb), 512))
	}
	out := prefix + ".png"
	defer os.Remove(out)
	img, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no image for page %s: %w", n, err)
	}
	return img, nil
}

func (d *popplerDoc) Close() error {
	return os.RemoveAll(d.dir)
}
