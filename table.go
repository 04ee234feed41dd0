package ntfp

import (
	"encoding/csv"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Observarun/geo-ntfp/log"

	"go.uber.org/zap"
)

// LoadValueTable reads the per-country price table, keyed by the label
// (ISO3) column, taking the configured year column as value-per-hectare.
// Rows without a label are dropped; rows whose value does not parse are
// kept but flagged invalid so the join can drop them.
func LoadValueTable(path string, cols Columns) (values map[string]ValueRecord, err error) {
	f, err := os.Open(path)
	if err != nil {
		log.Error("ValueTable:open failed", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()
	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		log.Error("ValueTable:read header failed", zap.String("path", path), zap.Error(err))
		return
	}
	idIdx := columnIndex(header, cols.CountryID)
	labelIdx := columnIndex(header, cols.CountryLabel)
	nameIdx := columnIndex(header, cols.CountryName)
	yearIdx := columnIndex(header, cols.Year)
	for col, idx := range map[string]int{
		cols.CountryID: idIdx, cols.CountryLabel: labelIdx,
		cols.CountryName: nameIdx, cols.Year: yearIdx,
	} {
		if idx < 0 {
			err = missingColumn("value table "+path, col, header)
			return
		}
	}
	records, err := r.ReadAll()
	if err != nil {
		log.Error("ValueTable:read rows failed", zap.String("path", path), zap.Error(err))
		return
	}
	values = make(map[string]ValueRecord, len(records))
	for _, rec := range records {
		label := strings.TrimSpace(rec[labelIdx])
		if label == "" {
			continue
		}
		v, perr := strconv.ParseFloat(strings.TrimSpace(rec[yearIdx]), 64)
		values[label] = ValueRecord{
			ID:         strings.TrimSpace(rec[idIdx]),
			Label:      label,
			Name:       strings.TrimSpace(rec[nameIdx]),
			ValuePerHa: v,
			Valid:      perr == nil && !math.IsNaN(v),
		}
	}
	if len(values) == 0 {
		err = ErrEmptyValueTable
		return
	}
	log.Info("ValueTable:loaded", zap.String("path", path),
		zap.String("year", cols.Year), zap.Int("countries", len(values)))
	return
}

// JoinValuation inner-joins the per-country pixel counts with the price
// table and prices the forest area. Countries missing from either side
// drop out, as do rows without a numeric rate; a rate of exactly zero is
// a valid data point and stays. Rows come back sorted by label.
func JoinValuation(counts map[string]int64, pixelAreaHa float64, values map[string]ValueRecord) []ValuationRow {
	rows := make([]ValuationRow, 0, len(counts))
	for label, pixels := range counts {
		rec, ok := values[label]
		if !ok || !rec.Valid {
			continue
		}
		area := float64(pixels) * pixelAreaHa
		rows = append(rows, ValuationRow{
			CountryID:    rec.ID,
			CountryLabel: label,
			CountryName:  rec.Name,
			ForestAreaHa: area,
			ValuePerHa:   rec.ValuePerHa,
			NtfpValue:    area * rec.ValuePerHa,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CountryLabel < rows[j].CountryLabel })
	return rows
}

// WriteValuation emits the final per-country value table.
func WriteValuation(path string, rows []ValuationRow) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	w := csv.NewWriter(f)
	if err = w.Write(outputHeader); err != nil {
		return
	}
	for _, row := range rows {
		rec := []string{
			row.CountryID,
			row.CountryLabel,
			row.CountryName,
			strconv.FormatFloat(row.ForestAreaHa, 'f', -1, 64),
			strconv.FormatFloat(row.ValuePerHa, 'f', -1, 64),
			strconv.FormatFloat(row.NtfpValue, 'f', -1, 64),
		}
		if err = w.Write(rec); err != nil {
			return
		}
	}
	w.Flush()
	err = w.Error()
	return
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}
