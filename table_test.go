package ntfp

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestCSV(t *testing.T, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "values.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	require.NoError(t, f.Close())
	return path
}

func TestLoadValueTable(t *testing.T) {
	path := writeTestCSV(t, [][]string{
		{"iso3_r250_id", "iso3_r250_label", "iso3_r250_name", "2019"},
		{"32", "BRA", "Brazil", "1000"},
		{"57", "COD", "DR Congo", "0"},
		{"12", "ATA", "Antarctica", "n/a"},
		{"99", "", "No Label", "5"},
	})
	values, err := LoadValueTable(path, DefaultColumns)
	require.NoError(t, err)
	require.Len(t, values, 3, "empty-label rows drop, unparseable rows stay flagged")

	bra := values["BRA"]
	assert.Equal(t, "32", bra.ID)
	assert.Equal(t, "Brazil", bra.Name)
	assert.Equal(t, 1000.0, bra.ValuePerHa)
	assert.True(t, bra.Valid)

	cod := values["COD"]
	assert.True(t, cod.Valid, "zero rate is a valid data point")
	assert.Equal(t, 0.0, cod.ValuePerHa)

	assert.False(t, values["ATA"].Valid, "non-numeric rate is kept but invalid")
}

func TestLoadValueTableMissingColumn(t *testing.T) {
	path := writeTestCSV(t, [][]string{
		{"iso3_r250_id", "iso3_r250_label", "iso3_r250_name", "2018"},
		{"32", "BRA", "Brazil", "1000"},
	})
	_, err := LoadValueTable(path, DefaultColumns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"2019"`)
	assert.Contains(t, err.Error(), "iso3_r250_label", "diagnostic lists available columns")
}

func TestLoadValueTableCustomYear(t *testing.T) {
	path := writeTestCSV(t, [][]string{
		{"iso3_r250_id", "iso3_r250_label", "iso3_r250_name", "2019", "2020"},
		{"32", "BRA", "Brazil", "1000", "1100"},
	})
	cols := DefaultColumns
	cols.Year = "2020"
	values, err := LoadValueTable(path, cols)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, values["BRA"].ValuePerHa)
}

func TestJoinValuation(t *testing.T) {
	// BRA split over two polygons upstream already aggregated to 250
	counts := map[string]int64{
		"BRA": 250,
		"COD": 40,
		"XXX": 10, // no price row -> dropped by the inner join
		"ATA": 7,  // invalid rate -> dropped
	}
	values := map[string]ValueRecord{
		"BRA": {ID: "32", Label: "BRA", Name: "Brazil", ValuePerHa: 1000, Valid: true},
		"COD": {ID: "57", Label: "COD", Name: "DR Congo", ValuePerHa: 0, Valid: true},
		"ATA": {ID: "12", Label: "ATA", Name: "Antarctica", Valid: false},
		"ZMB": {ID: "894", Label: "ZMB", Name: "Zambia", ValuePerHa: 3, Valid: true}, // no area row -> dropped
	}
	pixelAreaHa := 9.0 // 300x300 m pixels

	rows := JoinValuation(counts, pixelAreaHa, values)
	require.Len(t, rows, 2)

	bra := rows[0]
	assert.Equal(t, "BRA", bra.CountryLabel)
	assert.Equal(t, 2250.0, bra.ForestAreaHa)
	assert.Equal(t, 2250000.0, bra.NtfpValue)

	cod := rows[1]
	assert.Equal(t, "COD", cod.CountryLabel)
	assert.Equal(t, 0.0, cod.NtfpValue, "zero value rows are retained, not filtered")
}

// The end-to-end arithmetic: a 2x2 forest block of 300 m pixels inside
// one country priced at 1000/ha must come out as 36 ha and 36,000.
func TestValuationScenario(t *testing.T) {
	counts := map[string]int64{"BRA": 4}
	values := map[string]ValueRecord{
		"BRA": {ID: "32", Label: "BRA", Name: "Brazil", ValuePerHa: 1000, Valid: true},
	}
	pixelAreaHa := 300.0 * 300.0 / HectareInSqUnits

	rows := JoinValuation(counts, pixelAreaHa, values)
	require.Len(t, rows, 1)
	assert.Equal(t, 36.0, rows[0].ForestAreaHa)
	assert.Equal(t, 36000.0, rows[0].NtfpValue)
}

func TestWriteValuation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rows := []ValuationRow{
		{CountryID: "32", CountryLabel: "BRA", CountryName: "Brazil",
			ForestAreaHa: 36, ValuePerHa: 1000, NtfpValue: 36000},
	}
	require.NoError(t, WriteValuation(path, rows))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{
		"country_id", "country_label", "country_name",
		"forest_area_ha", "value_per_hectare", "ntfp_value",
	}, records[0])
	assert.Equal(t, []string{"32", "BRA", "Brazil", "36", "1000", "36000"}, records[1])
}
