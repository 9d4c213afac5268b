package track

import (
	"math"
	"time"
)

// nan keeps test fixtures readable: unreported ATCF fields are NaN.
var nan = math.NaN()

func testTime(day, hour int) time.Time {
	return time.Date(2023, 8, day, hour, 0, 0, 0, time.UTC)
}

// bestRecord is a minimal best-track observation at the given valid time.
func bestRecord(t time.Time, lat, lon float64) Record {
	return Record{
		Basin:                 "AL",
		StormNumber:           9,
		Datetime:              t,
		TrackStartTime:        t,
		Advisory:              AdvisoryBEST,
		Latitude:              lat,
		Longitude:             lon,
		MaxSustainedWindSpeed: 65,
		CentralPressure:       985,
		BackgroundPressure:    1013,
		IsotachRadius:         34,
		IsotachRadiusNEQ:      nan,
		IsotachRadiusSEQ:      nan,
		IsotachRadiusSWQ:      nan,
		IsotachRadiusNWQ:      nan,
		RadiusOfMaximumWinds:  nan,
		Direction:             nan,
		Speed:                 nan,
		Name:                  "IDALIA",
	}
}

// forecastRecord is a forecast row already canonicalized: valid time is
// cycle start plus lead hour.
func forecastRecord(advisory AdvisoryCode, cycle time.Time, leadHour int, lat, lon float64) Record {
	r := bestRecord(cycle.Add(time.Duration(leadHour)*time.Hour), lat, lon)
	r.Advisory = advisory
	r.TrackStartTime = cycle
	r.ForecastHours = leadHour
	return r
}

func withRadii(r Record, isotach, ne, se, sw, nw float64) Record {
	r.IsotachRadius = isotach
	r.IsotachRadiusNEQ = ne
	r.IsotachRadiusSEQ = se
	r.IsotachRadiusSWQ = sw
	r.IsotachRadiusNWQ = nw
	return r
}
