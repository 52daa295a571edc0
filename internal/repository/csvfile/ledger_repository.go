package csvfile

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"surfaceflow/internal/entity"
)

// LedgerRepository keeps one append-only CSV file per ledger kind under dir.
type LedgerRepository struct {
	dir string

	mu    sync.Mutex
	kinds map[entity.LedgerKind]*kindFile
}

// kindFile serialises writers of one file and caches its header.
type kindFile struct {
	mu     sync.Mutex
	header []string
}

func NewLedgerRepository(dir string) *LedgerRepository {
	return &LedgerRepository{
		dir:   dir,
		kinds: make(map[entity.LedgerKind]*kindFile),
	}
}

func (r *LedgerRepository) Path(kind entity.LedgerKind) string {
	return filepath.Join(r.dir, string(kind)+".csv")
}

func (r *LedgerRepository) file(kind entity.LedgerKind) *kindFile {
	r.mu.Lock()
	defer r.mu.Unlock()

	kf, ok := r.kinds[kind]
	if !ok {
		kf = &kindFile{}
		r.kinds[kind] = kf
	}
	return kf
}

func (r *LedgerRepository) Append(ctx context.Context, kind entity.LedgerKind, row entity.LedgerRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(row) == 0 {
		return errors.Wrapf(entity.ErrLedgerSchema, "%s: empty row", kind)
	}

	kf := r.file(kind)
	kf.mu.Lock()
	defer kf.mu.Unlock()

	path := r.Path(kind)
	if kf.header == nil {
		header, err := readHeader(path)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "read header of %s", path), entity.ErrLedgerIO)
		}
		kf.header = header
	}

	names := row.Names()
	writeHeader := kf.header == nil
	if !writeHeader && !slices.Equal(kf.header, names) {
		return errors.Wrapf(entity.ErrLedgerSchema, "%s: got %v, header %v", kind, names, kf.header)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return errors.Mark(errors.Wrapf(err, "create ledger dir %s", r.dir), entity.ErrLedgerIO)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "open %s", path), entity.ErrLedgerIO)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(names); err != nil {
			return errors.Mark(errors.Wrapf(err, "write header to %s", path), entity.ErrLedgerIO)
		}
	}
	if err := w.Write(row.Values()); err != nil {
		return errors.Mark(errors.Wrapf(err, "write row to %s", path), entity.ErrLedgerIO)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Mark(errors.Wrapf(err, "flush %s", path), entity.ErrLedgerIO)
	}

	if writeHeader {
		kf.header = names
	}
	return nil
}

// ReadAll parses every data row of kind. A store that was never written
// yields an empty slice.
func (r *LedgerRepository) ReadAll(ctx context.Context, kind entity.LedgerKind) ([]entity.LedgerRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kf := r.file(kind)
	kf.mu.Lock()
	defer kf.mu.Unlock()

	path := r.Path(kind)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []entity.LedgerRow{}, nil
		}
		return nil, errors.Mark(errors.Wrapf(err, "open %s", path), entity.ErrLedgerIO)
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1
	header, err := rd.Read()
	if errors.Is(err, io.EOF) {
		return []entity.LedgerRow{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse header of %s", path)
	}

	rows := []entity.LedgerRow{}
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		rows = append(rows, entity.ZipRow(header, rec))
	}
	return rows, nil
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return header, err
}
