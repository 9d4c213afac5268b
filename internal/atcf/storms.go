package atcf

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/vortex-track/internal/track"
)

// StormEntry is one row of the NHC storm list: a named system and its
// eight-character NHC code (basin + number + year).
type StormEntry struct {
	Name    string
	Basin   string
	Number  int
	Year    int
	EndDate time.Time
}

// Code returns the lowercase NHC code, e.g. "al092023".
func (e StormEntry) Code() string {
	return strings.ToLower(fmt.Sprintf("%s%02d%04d", e.Basin, e.Number, e.Year))
}

// Catalog resolves storm names to NHC codes.
type Catalog struct {
	entries []StormEntry
}

// StormListURL is the NHC index of every named system.
const StormListURL = nhcBaseURL + "/index/storm_list.txt"

// ParseStormList decodes the NHC storm_list.txt CSV. Malformed rows are
// skipped; the file carries decades of hand-edited entries.
func ParseStormList(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var entries []StormEntry
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse storm list: %w", err)
		}
		if len(row) < 9 {
			continue
		}
		number, err1 := strconv.Atoi(strings.TrimSpace(row[7]))
		year, err2 := strconv.Atoi(strings.TrimSpace(row[8]))
		if err1 != nil || err2 != nil {
			continue
		}
		entry := StormEntry{
			Name:   strings.ToUpper(strings.TrimSpace(row[0])),
			Basin:  strings.ToUpper(strings.TrimSpace(row[1])),
			Number: number,
			Year:   year,
		}
		if len(row) > 9 {
			if end, err := time.Parse(datetimeLayout, strings.TrimSpace(row[9])); err == nil {
				entry.EndDate = end
			}
		}
		entries = append(entries, entry)
	}
	return &Catalog{entries: entries}, nil
}

// NewCatalog builds a catalog from known entries, for tests and for
// callers that cache the storm list themselves.
func NewCatalog(entries []StormEntry) *Catalog {
	return &Catalog{entries: entries}
}

// Find resolves a storm name and year to its catalog entry.
func (c *Catalog) Find(name string, year int) (StormEntry, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, e := range c.entries {
		if e.Name == name && e.Year == year {
			return e, nil
		}
	}
	return StormEntry{}, fmt.Errorf("%w: storm %q %d", track.ErrNotFound, name, year)
}

// FindByCode resolves an NHC code back to its catalog entry.
func (c *Catalog) FindByCode(code string) (StormEntry, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, e := range c.entries {
		if e.Code() == code {
			return e, nil
		}
	}
	return StormEntry{}, fmt.Errorf("%w: storm code %q", track.ErrNotFound, code)
}

// InArchive reports whether the storm's deck has moved to the
// historical archive: the system ended before the current year.
func (c *Catalog) InArchive(entry StormEntry, now time.Time) bool {
	if !entry.EndDate.IsZero() {
		return entry.EndDate.Before(now.AddDate(0, 0, -7))
	}
	return entry.Year < now.Year()
}

// ParseStormID normalizes a storm identifier. Accepted forms are the
// NHC code ("al092023", "AL092023") and name plus four trailing year
// digits ("idalia2023", resolved through the catalog). Anything else
// is ErrInvalidArgument.
func ParseStormID(id string, catalog *Catalog) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if len(id) < 5 {
		return "", fmt.Errorf("%w: storm id %q", track.ErrInvalidArgument, id)
	}

	yearPart := id[len(id)-4:]
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return "", fmt.Errorf("%w: storm id %q has no trailing year", track.ErrInvalidArgument, id)
	}

	head := id[:len(id)-4]
	if len(head) == 4 {
		if _, err := strconv.Atoi(head[2:]); err == nil {
			// basin + 2-digit number: already an NHC code
			return head + yearPart, nil
		}
	}

	if catalog == nil {
		return "", fmt.Errorf("%w: name lookup for %q requires the storm catalog", track.ErrInvalidArgument, id)
	}
	entry, err := catalog.Find(head, year)
	if err != nil {
		return "", err
	}
	return entry.Code(), nil
}
