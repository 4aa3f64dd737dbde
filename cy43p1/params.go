package cy43p1

import (
	"fmt"
	"strings"

	"github.com/scorix/harmonie/errs"
)

// LevelType is the GRIB1 indicator of type of level (Code table 3)
// restricted to the values the CY43-P1 file set uses.
type LevelType uint8

const (
	LevelIsobaric          LevelType = 100
	LevelAltitudeAboveSea  LevelType = 103
	LevelHeightAboveGround LevelType = 105
	LevelHybrid            LevelType = 109
	LevelEntireAtmosphere  LevelType = 200
)

// TimeRangeIndicator is the GRIB1 time range indicator (Code table 5)
// restricted to the values the CY43-P1 file set uses.
type TimeRangeIndicator uint8

const (
	TimeRangeInstant               TimeRangeIndicator = 0
	TimeRangeAccumulatedPeriodPart TimeRangeIndicator = 2
	TimeRangeAccumulatedForecast   TimeRangeIndicator = 4
)

// ParameterID is the identity 4-tuple that uniquely names a message in
// a CY43-P1 file. No two catalog entries share the same ID.
type ParameterID struct {
	Code      uint8
	LevelType LevelType
	Level     uint16
	TimeRange TimeRangeIndicator
}

// Parameter is one catalog entry: the identity tuple, its descriptive
// metadata, and the byte offset of its message once the file has been
// indexed.
type Parameter struct {
	Code        uint8
	Name        string // lowercase short name
	Description string
	Units       string
	LevelType   LevelType
	Level       uint16
	TimeRange   TimeRangeIndicator
	HasBitmap   bool

	// ByteIndex is the offset of the message's Indicator Section, or
	// -1 until the file has been indexed for this parameter.
	ByteIndex int64
}

// ID returns the identity tuple of the entry.
func (p *Parameter) ID() ParameterID {
	return ParameterID{Code: p.Code, LevelType: p.LevelType, Level: p.Level, TimeRange: p.TimeRange}
}

type nameLevel struct {
	name  string
	level uint16
}

// Table is the parameter catalog of one reader. The catalog itself is
// static; the byte indexes are populated while indexing, which is why
// each reader owns its own copy.
type Table struct {
	entries []*Parameter
	byID    map[ParameterID]*Parameter
	byName  map[nameLevel]*Parameter
}

// NewTable builds the CY43-P1 catalog. It panics when the static
// catalog violates the identity-uniqueness invariant, which can only
// happen through a programming error.
func NewTable() *Table {
	t := &Table{
		byID:   make(map[ParameterID]*Parameter, len(catalog)),
		byName: make(map[nameLevel]*Parameter, len(catalog)),
	}

	for _, c := range catalog {
		p := c // copy, each Table owns mutable entries
		p.ByteIndex = -1
		if _, dup := t.byID[p.ID()]; dup {
			panic(fmt.Sprintf("cy43p1: duplicate parameter identity %+v", p.ID()))
		}
		t.entries = append(t.entries, &p)
		t.byID[p.ID()] = &p
		t.byName[nameLevel{p.Name, p.Level}] = &p
	}

	return t
}

// Lookup returns the entry with the given identity tuple.
func (t *Table) Lookup(id ParameterID) (*Parameter, bool) {
	p, ok := t.byID[id]
	return p, ok
}

// LookupName returns the entry with the given short name (compared
// case-insensitively) and level.
func (t *Table) LookupName(name string, level uint16) (*Parameter, bool) {
	p, ok := t.byName[nameLevel{strings.ToLower(name), level}]
	return p, ok
}

// All returns the catalog entries in canonical order.
func (t *Table) All() []*Parameter {
	return t.entries
}

// EntriesFor resolves a request to concrete catalog entries. A nil
// request selects the whole catalog; an unknown (name, level) pair
// fails the resolution.
func (t *Table) EntriesFor(params []Param) ([]*Parameter, error) {
	if params == nil {
		return t.entries, nil
	}

	out := make([]*Parameter, 0, len(params))
	for _, q := range params {
		p, ok := t.LookupName(q.Name, q.Level)
		if !ok {
			return nil, fmt.Errorf("%w: name: %s, level: %d", errs.ErrParameterNotFound, q.Name, q.Level)
		}
		out = append(out, p)
	}
	return out, nil
}

// setByteIndex records the message offset for an identity tuple.
// Unknown identities are ignored; the indexer skips messages the
// catalog does not describe.
func (t *Table) setByteIndex(id ParameterID, offset int64) {
	if p, ok := t.byID[id]; ok {
		p.ByteIndex = offset
	}
}

// catalog lists the 49 (code, level type, level, time range) tuples of
// the Harmonie CY43-P1 file set.
var catalog = []Parameter{
	{Code: 1, Name: "pmsl", Description: "Pressure altitude above mean sea level", Units: "Pa", LevelType: LevelAltitudeAboveSea, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 1, Name: "psrf", Description: "Pressure height above ground", Units: "Pa", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 6, Name: "gp", Description: "Geopotential", Units: "m2 s-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 11, Name: "tmp", Description: "Temperature", Units: "K", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 11, Name: "tmp", Description: "Temperature", Units: "K", LevelType: LevelHeightAboveGround, Level: 2, TimeRange: TimeRangeInstant},
	{Code: 11, Name: "tmp", Description: "Temperature", Units: "K", LevelType: LevelHeightAboveGround, Level: 50, TimeRange: TimeRangeInstant},
	{Code: 11, Name: "tmp", Description: "Temperature", Units: "K", LevelType: LevelHeightAboveGround, Level: 100, TimeRange: TimeRangeInstant},
	{Code: 11, Name: "tmp", Description: "Temperature", Units: "K", LevelType: LevelHeightAboveGround, Level: 200, TimeRange: TimeRangeInstant},
	{Code: 11, Name: "tmp", Description: "Temperature", Units: "K", LevelType: LevelHeightAboveGround, Level: 300, TimeRange: TimeRangeInstant},
	{Code: 11, Name: "isba", Description: "Temperature of nature tile", Units: "K", LevelType: LevelHeightAboveGround, Level: 800, TimeRange: TimeRangeInstant},
	{Code: 11, Name: "isba", Description: "Temperature of nature tile", Units: "K", LevelType: LevelHeightAboveGround, Level: 801, TimeRange: TimeRangeInstant},
	{Code: 11, Name: "isba", Description: "Temperature of nature tile", Units: "K", LevelType: LevelHeightAboveGround, Level: 802, TimeRange: TimeRangeInstant, HasBitmap: true},
	{Code: 17, Name: "dpt", Description: "Dew-point temperature", Units: "K", LevelType: LevelHeightAboveGround, Level: 2, TimeRange: TimeRangeInstant},
	{Code: 20, Name: "vis", Description: "Visibility", Units: "m", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 33, Name: "ugrd", Description: "u-component of wind", Units: "m s-1", LevelType: LevelHeightAboveGround, Level: 10, TimeRange: TimeRangeInstant},
	{Code: 33, Name: "ugrd", Description: "u-component of wind", Units: "m s-1", LevelType: LevelHeightAboveGround, Level: 50, TimeRange: TimeRangeInstant},
	{Code: 33, Name: "ugrd", Description: "u-component of wind", Units: "m s-1", LevelType: LevelHeightAboveGround, Level: 100, TimeRange: TimeRangeInstant},
	{Code: 33, Name: "ugrd", Description: "u-component of wind", Units: "m s-1", LevelType: LevelHeightAboveGround, Level: 200, TimeRange: TimeRangeInstant},
	{Code: 33, Name: "ugrd", Description: "u-component of wind", Units: "m s-1", LevelType: LevelHeightAboveGround, Level: 300, TimeRange: TimeRangeInstant},
	{Code: 34, Name: "vgrd", Description: "v-component of wind", Units: "m s-1", LevelType: LevelHeightAboveGround, Level: 10, TimeRange: TimeRangeInstant},
	{Code: 34, Name: "vgrd", Description: "v-component of wind", Units: "m s-1", LevelType: LevelHeightAboveGround, Level: 50, TimeRange: TimeRangeInstant},
	{Code: 34, Name: "vgrd", Description: "v-component of wind", Units: "m s-1", LevelType: LevelHeightAboveGround, Level: 100, TimeRange: TimeRangeInstant},
	{Code: 34, Name: "vgrd", Description: "v-component of wind", Units: "m s-1", LevelType: LevelHeightAboveGround, Level: 200, TimeRange: TimeRangeInstant},
	{Code: 34, Name: "vgrd", Description: "v-component of wind", Units: "m s-1", LevelType: LevelHeightAboveGround, Level: 300, TimeRange: TimeRangeInstant},
	{Code: 52, Name: "rh", Description: "Relative humidity", Units: "%", LevelType: LevelHeightAboveGround, Level: 2, TimeRange: TimeRangeInstant},
	{Code: 61, Name: "apcp", Description: "Total precipitation", Units: "kg m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeAccumulatedForecast},
	{Code: 65, Name: "weasd", Description: "Water equivalent of accumulated snow depth", Units: "kg m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 66, Name: "sd", Description: "Snow depth", Units: "m", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant, HasBitmap: true},
	{Code: 67, Name: "mixht", Description: "Mixed layer depth", Units: "m", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 71, Name: "tcdc", Description: "Total cloud cover", Units: "%", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 73, Name: "lcdc", Description: "Low cloud cover", Units: "%", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 74, Name: "mcdc", Description: "Medium cloud cover", Units: "%", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 75, Name: "hcdc", Description: "High cloud cover", Units: "%", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 81, Name: "land", Description: "Landcover", Units: "Proportion", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 111, Name: "nswrs", Description: "Net short-wave radiation flux (surface)", Units: "W m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeAccumulatedForecast},
	{Code: 112, Name: "nlwrs", Description: "Net long-wave radiation flux (surface)", Units: "W m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeAccumulatedForecast},
	{Code: 117, Name: "grad", Description: "Global radiation flux", Units: "W m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeAccumulatedForecast},
	{Code: 122, Name: "shtfl", Description: "Sensible heat flux", Units: "W m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeAccumulatedForecast},
	{Code: 132, Name: "lhtfl", Description: "Latent heat flux through evaporation", Units: "W m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeAccumulatedForecast},
	{Code: 162, Name: "csulf", Description: "U-momentum of gusts out of the model", Units: "m s-1", LevelType: LevelHeightAboveGround, Level: 10, TimeRange: TimeRangeAccumulatedPeriodPart},
	{Code: 163, Name: "csdlf", Description: "V-momentum of gusts out of the model", Units: "m s-1", LevelType: LevelHeightAboveGround, Level: 10, TimeRange: TimeRangeAccumulatedPeriodPart},
	{Code: 181, Name: "lpsxc", Description: "Cumulative sum rain", Units: "kg m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeAccumulatedForecast},
	{Code: 181, Name: "lpsx", Description: "Rain", Units: "kg m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 184, Name: "hgtyc", Description: "Cumulative sum snow", Units: "kg m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeAccumulatedForecast},
	{Code: 184, Name: "hgty", Description: "Snow", Units: "kg m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 186, Name: "icng", Description: "Cloud base", Units: "m", LevelType: LevelEntireAtmosphere, Level: 0, TimeRange: TimeRangeInstant, HasBitmap: true},
	{Code: 201, Name: "icwatc", Description: "Cumulative sum graupel", Units: "kg m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeAccumulatedForecast},
	{Code: 201, Name: "icwat", Description: "Graupel", Units: "kg m-2", LevelType: LevelHeightAboveGround, Level: 0, TimeRange: TimeRangeInstant},
	{Code: 201, Name: "icwat", Description: "Column integrated graupel", Units: "kg m-2", LevelType: LevelEntireAtmosphere, Level: 0, TimeRange: TimeRangeInstant},
}
