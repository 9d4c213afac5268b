package atcf

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/couchcryptid/vortex-track/internal/track"
)

// WriteDeck serializes a table in the format implied by the filename
// suffix: ".dat" and ".atcf" emit raw ATCF, ".22" emits the ADCIRC
// fort.22 variant. Anything else is ErrUnimplemented.
func WriteDeck(w io.Writer, table track.Table, filename string) error {
	switch {
	case strings.HasSuffix(filename, ".dat"), strings.HasSuffix(filename, ".atcf"):
		return WriteATCF(w, table)
	case strings.HasSuffix(filename, ".22"):
		return WriteFort22(w, table)
	}
	return fmt.Errorf("%w: output format for %q", track.ErrUnimplemented, filename)
}

// WriteATCF emits one comma-delimited ATCF line per record. Forecast
// rows are written at their cycle start time with the lead hour in the
// TAU column, undoing the valid-time shift applied on read.
func WriteATCF(w io.Writer, table track.Table) error {
	for _, r := range table {
		if _, err := fmt.Fprintln(w, formatLine(r, -1)); err != nil {
			return fmt.Errorf("write atcf: %w", err)
		}
	}
	return nil
}

// WriteFort22 emits the ADCIRC wind input variant: ATCF columns with a
// per-cycle record number appended.
func WriteFort22(w io.Writer, table track.Table) error {
	recordNumber := 0
	lastCycle := ""
	for _, r := range table {
		cycle := track.CycleKey(r.TrackStartTime)
		if cycle != lastCycle {
			recordNumber++
			lastCycle = cycle
		}
		if _, err := fmt.Fprintln(w, formatLine(r, recordNumber)); err != nil {
			return fmt.Errorf("write fort.22: %w", err)
		}
	}
	return nil
}

func formatLine(r track.Record, recordNumber int) string {
	stamp := r.Datetime
	hours := r.ForecastHours
	if r.Advisory != track.AdvisoryBEST && !r.TrackStartTime.IsZero() {
		stamp = r.TrackStartTime
	}

	fields := []string{
		fmt.Sprintf("%2s", r.Basin),
		fmt.Sprintf("%3d", r.StormNumber),
		" " + stamp.Format(datetimeLayout),
		fmt.Sprintf("%3s", r.AdvisoryNumber),
		fmt.Sprintf("%5s", r.Advisory),
		fmt.Sprintf("%4d", hours),
		fmt.Sprintf("%5s", formatPosition(r.Latitude, "N", "S")),
		fmt.Sprintf("%6s", formatPosition(r.Longitude, "E", "W")),
		fmt.Sprintf("%4s", formatInt(r.MaxSustainedWindSpeed)),
		fmt.Sprintf("%5s", formatInt(r.CentralPressure)),
		fmt.Sprintf("%3s", r.DevelopmentLevel),
		fmt.Sprintf("%4s", formatInt(r.IsotachRadius)),
		fmt.Sprintf("%4s", r.IsotachQuadrantCode),
		fmt.Sprintf("%5s", formatInt(r.IsotachRadiusNEQ)),
		fmt.Sprintf("%5s", formatInt(r.IsotachRadiusSEQ)),
		fmt.Sprintf("%5s", formatInt(r.IsotachRadiusSWQ)),
		fmt.Sprintf("%5s", formatInt(r.IsotachRadiusNWQ)),
		fmt.Sprintf("%5s", formatInt(r.BackgroundPressure)),
		fmt.Sprintf("%5s", formatInt(r.RadiusOfLastClosedIsobar)),
		fmt.Sprintf("%4s", formatInt(r.RadiusOfMaximumWinds)),
		fmt.Sprintf("%4s", formatInt(r.GustSpeed)),
		fmt.Sprintf("%4s", formatInt(r.EyeDiameter)),
		fmt.Sprintf("%4s", r.SubregionCode),
		fmt.Sprintf("%4s", formatInt(r.MaximumWaveHeight)),
		fmt.Sprintf("%4s", r.ForecasterInitials),
		fmt.Sprintf("%4s", formatInt(r.Direction)),
		fmt.Sprintf("%4s", formatInt(r.Speed)),
		fmt.Sprintf("%11s", r.Name),
	}
	if recordNumber >= 0 {
		fields = append(fields, fmt.Sprintf("%4d", recordNumber))
	} else if r.UserData != "" {
		fields = append(fields, r.UserData)
	}
	return strings.Join(fields, ",")
}

// formatPosition encodes a coordinate in tenths of a degree with a
// hemisphere suffix; 16.1 becomes "161N".
func formatPosition(v float64, positive, negative string) string {
	if math.IsNaN(v) {
		return ""
	}
	suffix := positive
	if v < 0 {
		suffix = negative
		v = -v
	}
	return fmt.Sprintf("%.0f%s", math.Round(v*10), suffix)
}

func formatInt(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.0f", math.Round(v))
}
