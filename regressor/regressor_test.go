package regressor

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/accidentcast/forecaster/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2022, 1, d, 0, 0, 0, 0, time.UTC)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestStoreLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "total_accidents_regressors.csv", "Unnamed: 0,ds,trafic\n0,2022-01-01,1.5\n1,2022-01-02,2.5\n")
	writeFile(t, dir, "gravite_accident_tué_regressors.csv", "ds,trafic\n2022-01-01,oops\n")

	store := NewStore(dir)

	testData := map[string]struct {
		key    series.Key
		expLen int
		err    error
	}{
		"valid": {
			key:    series.TotalAccidents,
			expLen: 2,
		},
		"missing file": {
			key: series.SeverityUnharmed,
			err: series.ErrUnknownSeries,
		},
		"malformed": {
			key: series.SeverityKilled,
			err: series.ErrDataFormat,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			tbl, err := store.Load(td.key)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expLen, tbl.Len())
			assert.Equal(t, []string{"trafic"}, tbl.Columns())
		})
	}
}

func TestStoreLoadReadsFresh(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "total_accidents_regressors.csv", "ds,trafic\n2022-01-01,1\n")
	store := NewStore(dir)

	tbl, err := store.Load(series.TotalAccidents)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	writeFile(t, dir, "total_accidents_regressors.csv", "ds,trafic\n2022-01-01,1\n2022-01-02,2\n")
	tbl, err = store.Load(series.TotalAccidents)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestTableJoin(t *testing.T) {
	tbl, err := NewTable(
		[]time.Time{day(2), day(3), day(5)},
		map[string][]float64{"trafic": {20, 30, 50}, "pluie": {0, 1, math.NaN()}},
		[]string{"trafic", "pluie"},
	)
	require.NoError(t, err)

	frame := []time.Time{day(1), day(2), day(3), day(4), day(5)}
	joined := tbl.Join(frame)
	require.Len(t, joined, 2)

	trafic := joined["trafic"]
	require.Len(t, trafic, len(frame))
	assert.True(t, math.IsNaN(trafic[0]))
	assert.Equal(t, []float64{20, 30}, trafic[1:3])
	assert.True(t, math.IsNaN(trafic[3]))
	assert.Equal(t, 50.0, trafic[4])

	missing := Missing(frame, joined, []string{"trafic", "pluie"})
	assert.Equal(t, []time.Time{day(1), day(4), day(5)}, missing)

	assert.Empty(t, Missing(frame[1:3], map[string][]float64{"trafic": trafic[1:3]}, []string{"trafic"}))
}

func TestNewTableMismatch(t *testing.T) {
	_, err := NewTable([]time.Time{day(1)}, map[string][]float64{"a": {1, 2}}, []string{"a"})
	assert.ErrorIs(t, err, series.ErrDataFormat)
}

func TestJoinOwnDatesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "total_accidents_regressors.csv",
		"ds,trafic,pluie\n2022-01-01,0.1234567891,12\n2022-01-02,-3.5,\n2022-01-03,1e6,0\n")

	tbl, err := NewStore(dir).Load(series.TotalAccidents)
	require.NoError(t, err)

	joined := tbl.Join(tbl.Dates())
	assert.Equal(t, []float64{0.1234567891, -3.5, 1e6}, joined["trafic"])

	pluie := joined["pluie"]
	require.Len(t, pluie, 3)
	assert.Equal(t, 12.0, pluie[0])
	assert.True(t, math.IsNaN(pluie[1]))
	assert.Equal(t, 0.0, pluie[2])
}
