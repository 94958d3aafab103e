package report

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/storage"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	itemsSheet  = "Items"
	creditSheet = "Credit"
)

// Filename is the download name of the XLSX export of r.
func Filename(r domain.StockReport) string {
	return fmt.Sprintf("stock-report_%s_%s.xlsx", r.Range.From.Format(domain.DateLayout), r.Range.To.Format(domain.DateLayout))
}

// XLSX renders the report as a workbook with one sheet per section.
func XLSX(r domain.StockReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", itemsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	// Header
	header := []interface{}{"Item", "Added", "Packed", "Lost", "Added value"}
	if err := f.SetSheetRow(itemsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, line := range r.Lines {
		row := []interface{}{line.ItemName, line.Added, line.Packed, line.Lost, line.AddedValue.InexactFloat64()}
		if err := f.SetSheetRow(itemsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("write item row: %w", err)
		}
	}

	if _, err := f.NewSheet(creditSheet); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}
	creditHeader := []interface{}{"Supplier", "Credit total"}
	if err := f.SetSheetRow(creditSheet, "A1", &creditHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, c := range r.Credit {
		row := []interface{}{c.Supplier, c.Total.InexactFloat64()}
		if err := f.SetSheetRow(creditSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("write credit row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Archiver keeps a copy of exported reports in object storage.
type Archiver struct {
	store  storage.ObjectStorage
	prefix string
}

func NewArchiver(store storage.ObjectStorage, prefix string) *Archiver {
	return &Archiver{store: store, prefix: prefix}
}

// Key is where the export of r for teamID is archived.
func (a *Archiver) Key(teamID string, r domain.StockReport) string {
	return path.Join(a.prefix, teamID, Filename(r))
}

// Archive uploads an already rendered workbook and returns its key.
func (a *Archiver) Archive(ctx context.Context, teamID string, r domain.StockReport, data []byte) (string, error) {
	key := a.Key(teamID, r)
	if err := a.store.UploadObject(ctx, key, data, ContentType); err != nil {
		return "", err
	}
	return key, nil
}

// List returns the archived reports of a team, newest first.
func (a *Archiver) List(ctx context.Context, teamID string) ([]storage.ObjectInfo, error) {
	objects, err := a.store.ListObjects(ctx, path.Join(a.prefix, teamID)+"/")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(objects, func(i, j int) bool {
		if objects[i].LastModified.Equal(objects[j].LastModified) {
			return objects[i].Key < objects[j].Key
		}
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects, nil
}
