package nowcast

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/scorix/harmonie/errs"
)

// calibrationFactor converts raw pixel units to millimetres per
// 5-minute frame; times 12 frames per hour gives mm/h.
const calibrationFactor = 0.01

// PixelToMMPerHour converts a raw radar pixel value to a precipitation
// rate in millimetres per hour, rounded to two decimals.
func PixelToMMPerHour(v uint16) float64 {
	return math.Round(float64(v)*calibrationFactor*12*100) / 100
}

// imageTimeLayout matches the HDF5 image_datetime_valid attribute,
// except that the three-letter month is stored in uppercase.
const imageTimeLayout = "02-Jan-2006;15:04:05.000"

// ParseImageTime parses an image_datetime_valid attribute value such
// as "04-DEC-2024;20:15:00.000" into a UTC timestamp.
func ParseImageTime(s string) (time.Time, error) {
	s = strings.TrimRight(s, "\x00")
	if len(s) < 11 {
		return time.Time{}, fmt.Errorf("%w: datetime attribute %q too short", errs.ErrRead, s)
	}

	// normalize the month token for time.Parse: "DEC" -> "Dec"
	norm := s[:3] + strings.ToUpper(s[3:4]) + strings.ToLower(s[4:6]) + s[6:]

	t, err := time.ParseInLocation(imageTimeLayout, norm, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: datetime attribute %q: %v", errs.ErrRead, s, err)
	}
	return t, nil
}
