package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"localch-scraper/internal/models"
)

// FileSuffix is appended to the keyword-derived file name.
const FileSuffix = "_localch_results.csv"

// ErrBadHeader is returned by Read when the first row is not models.Columns.
var ErrBadHeader = errors.New("unexpected CSV header")

// fileNameReplacer maps spaces and path separators to underscores so a keyword
// always names a file directly inside the output directory.
var fileNameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// FileName derives the output file name from keyword; spaces become underscores.
func FileName(keyword string) string {
	return fileNameReplacer.Replace(keyword) + FileSuffix
}

// Writer writes result files into a directory.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "output"
	}
	return &Writer{dir: dir}
}

// Write creates the output directory if needed and writes records, with a
// header row, to the keyword's file, replacing any previous file. It returns
// the path written.
func (w *Writer) Write(records []models.ListingRecord, keyword string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.dir, FileName(keyword))
	if filepath.Dir(path) != filepath.Clean(w.dir) {
		return "", fmt.Errorf("keyword %q does not name a file in %s", keyword, w.dir)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, records); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// Encode writes the header and one row per record, in order.
func Encode(out io.Writer, records []models.ListingRecord) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(models.Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read loads a file written by Write.
func Read(path string) ([]models.ListingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses CSV produced by Encode.
func Decode(in io.Reader) ([]models.ListingRecord, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = len(models.Columns)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrBadHeader
		}
		return nil, err
	}
	if !slices.Equal(header, models.Columns) {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
	}
	var records []models.ListingRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, models.RecordFromRow(row))
	}
}
