package cy43p1_test

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scorix/harmonie/cy43p1"
	"github.com/scorix/harmonie/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilename(t *testing.T) {
	run, hour, err := cy43p1.ParseFilename("HA43_N20_202412221800_00000_GB")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 22, 18, 0, 0, 0, time.UTC), run)
	assert.Equal(t, 0, hour)

	_, hour, err = cy43p1.ParseFilename("HA43_N20_202412221800_00300_GB")
	require.NoError(t, err)
	assert.Equal(t, 3, hour)

	_, hour, err = cy43p1.ParseFilename("HA43_N20_202412221800_04800_GB")
	require.NoError(t, err)
	assert.Equal(t, 48, hour)

	for _, bad := range []string{
		"HA43_N20_202412221800_000_GB",
		"HA40_N20_202412221800_00000_GB",
		"HA43_N20_202412221800_00000_GB.tmp",
		"random.txt",
	} {
		_, _, err := cy43p1.ParseFilename(bad)
		require.Error(t, err, bad)
		assert.ErrorIs(t, err, errs.ErrInvalidFilename)
	}
}

// writeForecastHours writes one synthetic two-parameter file per given
// forecast hour and returns the paths.
func writeForecastHours(t *testing.T, dir string, hours ...int) []string {
	t.Helper()
	paths := make([]string, 0, len(hours))
	for _, h := range hours {
		name := "HA43_N20_202412221800_" + pad5(h*100) + "_GB"
		paths = append(paths, writeTwoParamFile(t, dir, name))
	}
	return paths
}

func pad5(n int) string {
	s := "00000"
	d := []byte(s)
	for i := 4; i >= 0 && n > 0; i-- {
		d[i] = byte('0' + n%10)
		n /= 10
	}
	return string(d)
}

func TestDataset_FromFiles_GetForecast(t *testing.T) {
	dir := t.TempDir()
	paths := writeForecastHours(t, dir, 0, 1, 2)

	ds, err := cy43p1.FromFiles(paths, -1)
	require.NoError(t, err)
	defer ds.Close()

	locations := []cy43p1.Location{{Lon: 5.0, Lat: 52.0}, {Lon: 6.0, Lat: 53.0}}
	params := []cy43p1.Param{{Name: "tmp", Level: 0}, {Name: "isba", Level: 802}}

	forecast, err := ds.GetForecast(locations, params)
	require.NoError(t, err)
	require.Len(t, forecast.Locations, 2)

	ref := time.Date(2024, 12, 22, 18, 0, 0, 0, time.UTC)
	for li, lf := range forecast.Locations {
		assert.Equal(t, locations[li], lf.Location)
		require.Len(t, lf.Parameters, 2)
		for _, pf := range lf.Parameters {
			require.Len(t, pf.Values, 3)
			for i, v := range pf.Values {
				assert.Equal(t, ref.Add(time.Duration(i)*time.Hour), v.Time)
			}
		}
	}

	// values come from the per-hour files; every hour's file holds the
	// same synthetic field, so the series is constant per location
	g := cy43p1.DefaultGrid
	idx0, err := g.ClosestIndex(5.0, 52.0)
	require.NoError(t, err)
	assert.Equal(t, valueAt(0, idx0), forecast.Locations[0].Parameters[0].Values[0].Value)
	assert.Equal(t, valueAt(1, idx0), forecast.Locations[0].Parameters[1].Values[2].Value)
}

func TestDataset_FromDirectory_MaxHour(t *testing.T) {
	dir := t.TempDir()
	writeForecastHours(t, dir, 0, 1, 2, 3)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o644))

	ds, err := cy43p1.FromDirectory(dir, 1)
	require.NoError(t, err)
	defer ds.Close()

	assert.Len(t, ds.Paths(), 2)

	forecast, err := ds.GetForecast([]cy43p1.Location{{Lon: 5.0, Lat: 52.0}}, []cy43p1.Param{{Name: "tmp", Level: 0}})
	require.NoError(t, err)
	require.Len(t, forecast.Locations, 1)
	assert.Len(t, forecast.Locations[0].Parameters[0].Values, 2)
}

func TestDataset_FromFiles_InvalidName(t *testing.T) {
	dir := t.TempDir()
	path := writeTwoParamFile(t, dir, "not_a_forecast_file")

	_, err := cy43p1.FromFiles([]string{path}, -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidFilename)
}

func TestDataset_FromTar(t *testing.T) {
	dir := t.TempDir()
	paths := writeForecastHours(t, dir, 0, 1)

	tarPath := filepath.Join(dir, "run.tar")
	tf, err := os.Create(tarPath)
	require.NoError(t, err)

	tw := tar.NewWriter(tf)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		// nested path: members may sit at any depth in the archive
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     "nested/dir/" + filepath.Base(p),
			Mode:     0o644,
			Size:     int64(len(data)),
			Typeflag: tar.TypeReg,
		}))
		_, err = tw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, tf.Close())

	ds, err := cy43p1.FromTar(tarPath, -1)
	require.NoError(t, err)

	assert.Len(t, ds.Paths(), 2)
	scratch := filepath.Dir(ds.Paths()[0])

	forecast, err := ds.GetForecast([]cy43p1.Location{{Lon: 5.0, Lat: 52.0}}, []cy43p1.Param{{Name: "tmp", Level: 0}})
	require.NoError(t, err)
	assert.Len(t, forecast.Locations[0].Parameters[0].Values, 2)

	// the scratch directory's lifetime is the dataset's
	require.NoError(t, ds.Close())
	_, err = os.Stat(scratch)
	assert.True(t, os.IsNotExist(err))
}

func TestDataset_FromTar_NotFound(t *testing.T) {
	_, err := cy43p1.FromTar(filepath.Join(t.TempDir(), "missing.tar"), -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrFileNotFound)
}

func TestDataset_Get_PerFileResponses(t *testing.T) {
	dir := t.TempDir()
	paths := writeForecastHours(t, dir, 0, 1)

	ds, err := cy43p1.FromFiles(paths, -1)
	require.NoError(t, err)
	defer ds.Close()

	responses, err := ds.Get([]cy43p1.Param{{Name: "tmp", Level: 0}}, []cy43p1.Location{{Lon: 5.0, Lat: 52.0}})
	require.NoError(t, err)
	require.Len(t, responses, 2)
	for _, resp := range responses {
		require.Len(t, resp.Results, 1)
		assert.Len(t, resp.Results[0].Values, 1)
	}
}

func TestDataset_GetForecast_RequiresLocations(t *testing.T) {
	dir := t.TempDir()
	paths := writeForecastHours(t, dir, 0)

	ds, err := cy43p1.FromFiles(paths, -1)
	require.NoError(t, err)
	defer ds.Close()

	_, err = ds.GetForecast(nil, nil)
	require.Error(t, err)
}
