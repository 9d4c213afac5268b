// Package atcf reads and writes Automated Tropical Cyclone Forecast
// deck files and resolves storm identifiers against the NHC catalog.
package atcf

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/vortex-track/internal/track"
)

// deck column positions, comma-delimited
const (
	colBasin = iota
	colStormNumber
	colDatetime
	colAdvisoryNumber
	colAdvisory
	colForecastHours
	colLatitude
	colLongitude
	colMaxWind
	colCentralPressure
	colDevelopmentLevel
	colIsotachRadius
	colQuadrantCode
	colRadiusNEQ
	colRadiusSEQ
	colRadiusSWQ
	colRadiusNWQ
	colBackgroundPressure
	colLastClosedIsobar
	colRadiusMaxWinds
	colGusts
	colEyeDiameter
	colSubregion
	colMaxSeas
	colInitials
	colDirection
	colSpeed
	colName
	colUserData
)

const datetimeLayout = "2006010215"

// ParseDeck decodes comma-delimited ATCF lines into records, keeping
// only the requested advisories (all when the filter is empty). Rows
// whose advisory or timestamp cannot be read are skipped, not fatal: a
// live deck routinely carries aids the schema does not model.
func ParseDeck(r io.Reader, advisories []track.AdvisoryCode) (track.Table, error) {
	keep := make(map[track.AdvisoryCode]bool, len(advisories))
	for _, code := range advisories {
		keep[code] = true
	}

	var table track.Table
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		record, ok := parseLine(line)
		if !ok {
			continue
		}
		if len(keep) > 0 && !keep[record.Advisory] {
			continue
		}
		table = append(table, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	return table, nil
}

func parseLine(line string) (track.Record, bool) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) <= colLongitude {
		return track.Record{}, false
	}

	datetime, err := time.Parse(datetimeLayout, field(fields, colDatetime))
	if err != nil {
		return track.Record{}, false
	}
	advisory, err := track.ParseAdvisoryCode(field(fields, colAdvisory))
	if err != nil {
		return track.Record{}, false
	}

	r := track.Record{
		Basin:          strings.ToUpper(field(fields, colBasin)),
		StormNumber:    parseInt(field(fields, colStormNumber)),
		Datetime:       datetime,
		TrackStartTime: datetime,
		AdvisoryNumber: field(fields, colAdvisoryNumber),
		Advisory:       advisory,
		ForecastHours:  parseInt(field(fields, colForecastHours)),

		Latitude:  parsePosition(field(fields, colLatitude), "N", "S"),
		Longitude: parsePosition(field(fields, colLongitude), "E", "W"),

		MaxSustainedWindSpeed: parseFloat(field(fields, colMaxWind)),
		CentralPressure:       parseFloat(field(fields, colCentralPressure)),
		DevelopmentLevel:      field(fields, colDevelopmentLevel),

		IsotachRadius:       parseFloat(field(fields, colIsotachRadius)),
		IsotachQuadrantCode: field(fields, colQuadrantCode),
		IsotachRadiusNEQ:    parseFloat(field(fields, colRadiusNEQ)),
		IsotachRadiusSEQ:    parseFloat(field(fields, colRadiusSEQ)),
		IsotachRadiusSWQ:    parseFloat(field(fields, colRadiusSWQ)),
		IsotachRadiusNWQ:    parseFloat(field(fields, colRadiusNWQ)),

		BackgroundPressure:       parseFloat(field(fields, colBackgroundPressure)),
		RadiusOfLastClosedIsobar: parseFloat(field(fields, colLastClosedIsobar)),
		RadiusOfMaximumWinds:     parseFloat(field(fields, colRadiusMaxWinds)),
		GustSpeed:                parseFloat(field(fields, colGusts)),
		EyeDiameter:              parseFloat(field(fields, colEyeDiameter)),
		SubregionCode:            field(fields, colSubregion),
		MaximumWaveHeight:        parseFloat(field(fields, colMaxSeas)),
		ForecasterInitials:       field(fields, colInitials),

		Direction: parseFloat(field(fields, colDirection)),
		Speed:     parseFloat(field(fields, colSpeed)),
		Name:      field(fields, colName),
	}

	if len(fields) > colUserData {
		r.UserData = strings.Join(fields[colUserData:], ",")
	}
	if math.IsNaN(r.Latitude) || math.IsNaN(r.Longitude) {
		return track.Record{}, false
	}
	return r, true
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

// parseFloat treats empty fields and the ATCF NA / -99999 sentinels as
// missing (NaN).
func parseFloat(s string) float64 {
	if s == "" || s == "NA" || s == "-99999" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseInt decodes an integer column. Blanks, sentinels and garbage
// decode to zero: converting NaN to int is implementation-defined and
// would poison downstream time arithmetic.
func parseInt(s string) int {
	v := parseFloat(s)
	if math.IsNaN(v) {
		return 0
	}
	return int(v)
}

// parsePosition decodes an ATCF coordinate in tenths of a degree with a
// hemisphere suffix: "161N" is 16.1, "0269W" is -26.9.
func parsePosition(s, positive, negative string) float64 {
	if s == "" {
		return math.NaN()
	}
	sign := 1.0
	switch {
	case strings.HasSuffix(s, positive):
		s = strings.TrimSuffix(s, positive)
	case strings.HasSuffix(s, negative):
		s = strings.TrimSuffix(s, negative)
		sign = -1
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return sign * v / 10
}
