package track

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/vortex-track/internal/geo"
)

// StoreConfig identifies one storm dataset. Any change to it invalidates
// the canonical table and every derived product.
type StoreConfig struct {
	StormID    string
	FileDeck   FileDeck
	Mode       Mode
	Advisories []AdvisoryCode
	Filename   string
	RMWFill    RMWFillMethod
}

func (c StoreConfig) key() string {
	codes := make([]string, len(c.Advisories))
	for i, a := range c.Advisories {
		codes[i] = string(a)
	}
	return strings.Join([]string{
		c.StormID, string(c.FileDeck), string(c.Mode),
		strings.Join(codes, "+"), c.Filename, string(c.RMWFill),
	}, "|")
}

// DeckReader is the external collaborator that resolves a configuration
// to raw canonical records. Advisories may extend the configured set
// (the store requests CARQ alongside OFCL for correction).
type DeckReader interface {
	ReadDeck(ctx context.Context, cfg StoreConfig, advisories []AdvisoryCode) (Table, error)
}

// Store owns the canonical table for one configuration and memoizes
// derived products. It is deliberately single-threaded: no internal
// locking is provided, callers sharing a store across goroutines must
// serialize access externally.
type Store struct {
	cfg       StoreConfig
	reader    DeckReader
	corrector *Corrector
	logger    *slog.Logger

	raw         Table
	loadedKey   string
	posHash     uint64
	refreshedAt time.Time

	startDate time.Time
	endDate   time.Time

	linestrings map[string]map[AdvisoryCode]map[string][]geo.Point
	distances   map[string]map[AdvisoryCode]map[string]float64
	isotachs    map[string]IsotachSet
	swaths      map[string]SwathSet
}

// NewStore validates the configuration eagerly and returns a store; no
// data is fetched until first access.
func NewStore(cfg StoreConfig, reader DeckReader, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FileDeck == "" {
		cfg.FileDeck = DeckBest
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeRealtime
	}
	if cfg.RMWFill == "" {
		cfg.RMWFill = RMWFillNone
	}

	valid, err := ValidAdvisories(cfg.FileDeck)
	if err != nil {
		return nil, err
	}
	if len(cfg.Advisories) == 0 {
		cfg.Advisories = valid
	} else {
		for _, code := range cfg.Advisories {
			if !containsAdvisory(valid, code) {
				return nil, fmt.Errorf("%w: advisory %s not valid for file deck %q",
					ErrInvalidArgument, code, cfg.FileDeck)
			}
		}
	}
	if cfg.StormID == "" && cfg.Filename == "" {
		return nil, fmt.Errorf("%w: either storm id or filename is required", ErrInvalidArgument)
	}

	return &Store{
		cfg:         cfg,
		reader:      reader,
		corrector:   NewCorrector(cfg.RMWFill, logger),
		logger:      logger,
		linestrings: make(map[string]map[AdvisoryCode]map[string][]geo.Point),
		distances:   make(map[string]map[AdvisoryCode]map[string]float64),
		isotachs:    make(map[string]IsotachSet),
		swaths:      make(map[string]SwathSet),
	}, nil
}

// Config returns the current configuration.
func (s *Store) Config() StoreConfig { return s.cfg }

// RefreshedAt reports when the canonical table was last rebuilt.
func (s *Store) RefreshedAt() time.Time { return s.refreshedAt }

// Loaded reports whether a deck has been fetched yet.
func (s *Store) Loaded() bool { return s.raw != nil }

// SetAdvisories replaces the advisory set, validating it against the
// file deck. Derived products are invalidated via the configuration key.
func (s *Store) SetAdvisories(advisories []AdvisoryCode) error {
	valid, err := ValidAdvisories(s.cfg.FileDeck)
	if err != nil {
		return err
	}
	for _, code := range advisories {
		if !containsAdvisory(valid, code) {
			return fmt.Errorf("%w: advisory %s not valid for file deck %q",
				ErrInvalidArgument, code, s.cfg.FileDeck)
		}
	}
	s.cfg.Advisories = advisories
	return nil
}

// SetRMWFill switches the RMW fill policy; the table is rebuilt on next
// access.
func (s *Store) SetRMWFill(method RMWFillMethod) error {
	parsed, err := ParseRMWFillMethod(string(method))
	if err != nil {
		return err
	}
	s.cfg.RMWFill = parsed
	s.corrector = NewCorrector(parsed, s.logger)
	return nil
}

// SetWindow restricts the view table to [start, end]. Zero times leave
// the corresponding bound open. Window changes do not refetch.
func (s *Store) SetWindow(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return fmt.Errorf("%w: window start %s after end %s", ErrInvalidArgument, start, end)
	}
	s.startDate = start
	s.endDate = end
	return nil
}

// RawData returns the unfiltered canonical table, fetching and deriving
// it on first access or when the configuration changed. Velocity is
// re-estimated when position values changed under us (detected by a
// content hash over positions).
func (s *Store) RawData(ctx context.Context) (Table, error) {
	key := s.cfg.key()
	if s.raw == nil || key != s.loadedKey {
		if err := s.refresh(ctx, key); err != nil {
			return nil, err
		}
	}

	if hash := hashPositions(s.raw); hash != s.posHash || missingVelocity(s.raw) {
		s.raw = EstimateVelocity(s.raw)
		s.posHash = hashPositions(s.raw)
	}

	return s.raw, nil
}

// Data returns the window-filtered view of the canonical table.
func (s *Store) Data(ctx context.Context) (Table, error) {
	raw, err := s.RawData(ctx)
	if err != nil {
		return nil, err
	}
	return raw.Window(s.startDate, s.endDate), nil
}

// Tracks partitions the view table by advisory and cycle start time.
// The partition is recomputed on every call, never mutated in place.
func (s *Store) Tracks(ctx context.Context) (map[AdvisoryCode]map[string]Table, error) {
	data, err := s.Data(ctx)
	if err != nil {
		return nil, err
	}
	return SeparateTracks(data), nil
}

// Linestrings returns each track's point sequence (duplicate positions
// collapsed); tracks with fewer than two distinct positions are absent.
func (s *Store) Linestrings(ctx context.Context) (map[AdvisoryCode]map[string][]geo.Point, error) {
	// Refresh before the memo lookup so the key carries the current
	// position hash.
	tracks, err := s.Tracks(ctx)
	if err != nil {
		return nil, err
	}

	key := s.memoKey("linestrings")
	if cached, ok := s.linestrings[key]; ok {
		return cached, nil
	}

	out := make(map[AdvisoryCode]map[string][]geo.Point)
	for advisory, byCycle := range tracks {
		for cycleKey, tr := range byCycle {
			var line []geo.Point
			for _, r := range tr {
				p := r.Position()
				if len(line) > 0 && line[len(line)-1] == p {
					continue
				}
				line = append(line, p)
			}
			if len(line) < 2 {
				continue
			}
			if out[advisory] == nil {
				out[advisory] = make(map[string][]geo.Point)
			}
			out[advisory][cycleKey] = line
		}
	}

	s.linestrings[key] = out
	return out, nil
}

// Distances returns each track's length in meters over WGS84.
func (s *Store) Distances(ctx context.Context) (map[AdvisoryCode]map[string]float64, error) {
	linestrings, err := s.Linestrings(ctx)
	if err != nil {
		return nil, err
	}

	key := s.memoKey("distances")
	if cached, ok := s.distances[key]; ok {
		return cached, nil
	}

	out := make(map[AdvisoryCode]map[string]float64)
	for advisory, byCycle := range linestrings {
		out[advisory] = make(map[string]float64)
		for cycleKey, line := range byCycle {
			total := 0.0
			for i := 0; i < len(line)-1; i++ {
				_, _, dist := geo.Inverse(line[i], line[i+1])
				total += dist
			}
			out[advisory][cycleKey] = total
		}
	}

	s.distances[key] = out
	return out, nil
}

// Isotachs returns the memoized isotach polygons for a wind-speed bin.
func (s *Store) Isotachs(ctx context.Context, windSpeed float64, segments int) (IsotachSet, error) {
	if !ValidIsotachSpeed(windSpeed) {
		return nil, fmt.Errorf("%w: isotach wind speed %v not one of [34 50 64]", ErrInvalidArgument, windSpeed)
	}
	data, err := s.Data(ctx)
	if err != nil {
		return nil, err
	}

	key := s.memoKey(fmt.Sprintf("isotachs|%v|%d", windSpeed, segments))
	if cached, ok := s.isotachs[key]; ok {
		return cached, nil
	}

	set, err := Isotachs(data, windSpeed, segments)
	if err != nil {
		return nil, err
	}
	s.isotachs[key] = set
	return set, nil
}

// WindSwaths returns the memoized swath polygons for a wind-speed bin.
func (s *Store) WindSwaths(ctx context.Context, windSpeed float64, segments int) (SwathSet, error) {
	if !ValidIsotachSpeed(windSpeed) {
		return nil, fmt.Errorf("%w: isotach wind speed %v not one of [34 50 64]", ErrInvalidArgument, windSpeed)
	}
	data, err := s.Data(ctx)
	if err != nil {
		return nil, err
	}

	key := s.memoKey(fmt.Sprintf("swaths|%v|%d", windSpeed, segments))
	if cached, ok := s.swaths[key]; ok {
		return cached, nil
	}

	set, err := WindSwaths(data, windSpeed, segments)
	if err != nil {
		return nil, err
	}
	s.swaths[key] = set
	return set, nil
}

// Name returns the most frequently used storm name in the view table.
func (s *Store) Name(ctx context.Context) (string, error) {
	data, err := s.Data(ctx)
	if err != nil {
		return "", err
	}
	counts := make(map[string]int)
	for _, r := range data {
		if name := strings.TrimSpace(r.Name); name != "" {
			counts[name]++
		}
	}
	best, bestCount := "", 0
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}
	return best, nil
}

// Basin returns the storm's ATCF basin code.
func (s *Store) Basin(ctx context.Context) (string, error) {
	data, err := s.Data(ctx)
	if err != nil || len(data) == 0 {
		return "", err
	}
	return data[0].Basin, nil
}

// StormNumber returns the storm's ordinal number within basin and year.
func (s *Store) StormNumber(ctx context.Context) (int, error) {
	data, err := s.Data(ctx)
	if err != nil || len(data) == 0 {
		return 0, err
	}
	return data[0].StormNumber, nil
}

// Year returns the year of the first record in the view table.
func (s *Store) Year(ctx context.Context) (int, error) {
	data, err := s.Data(ctx)
	if err != nil || len(data) == 0 {
		return 0, err
	}
	return data[0].Datetime.Year(), nil
}

// Duration returns the view table's time span.
func (s *Store) Duration(ctx context.Context) (time.Duration, error) {
	data, err := s.Data(ctx)
	if err != nil || len(data) == 0 {
		return 0, err
	}
	return data[len(data)-1].Datetime.Sub(data[0].Datetime), nil
}

func (s *Store) refresh(ctx context.Context, key string) error {
	fetchAdvisories := append([]AdvisoryCode{}, s.cfg.Advisories...)
	dropCARQ := false
	if containsAdvisory(fetchAdvisories, AdvisoryOFCL) && !containsAdvisory(fetchAdvisories, AdvisoryCARQ) {
		fetchAdvisories = append(fetchAdvisories, AdvisoryCARQ)
		dropCARQ = true
	}

	table, err := s.reader.ReadDeck(ctx, s.cfg, fetchAdvisories)
	if err != nil {
		return err
	}

	table = Canonicalize(table)

	if containsAdvisory(s.cfg.Advisories, AdvisoryOFCL) {
		table = s.corrector.Correct(table)
	}

	if dropCARQ {
		kept := make(Table, 0, len(table))
		for _, r := range table {
			if r.Advisory != AdvisoryCARQ {
				kept = append(kept, r)
			}
		}
		table = kept
	}

	table = EstimateVelocity(table)

	s.raw = table
	s.loadedKey = key
	s.posHash = hashPositions(table)
	s.refreshedAt = clock.Now()

	s.logger.Info("canonical table rebuilt",
		"storm_id", s.cfg.StormID,
		"file_deck", s.cfg.FileDeck,
		"records", len(table),
		"rmw_fill", s.cfg.RMWFill)

	return nil
}

// Canonicalize sorts raw deck records and establishes the cycle
// invariants: BEST rows all share the first observation time as their
// track start, forecast rows get their cycle initialization time as
// track start and a valid time shifted by the forecast hour.
func Canonicalize(table Table) Table {
	out := table.Clone()
	out.SortCanonical()

	var bestStart time.Time
	for _, r := range out {
		if r.Advisory == AdvisoryBEST && (bestStart.IsZero() || r.Datetime.Before(bestStart)) {
			bestStart = r.Datetime
		}
	}

	for i := range out {
		if out[i].Advisory == AdvisoryBEST {
			out[i].TrackStartTime = bestStart
			continue
		}
		out[i].TrackStartTime = out[i].Datetime
		out[i].Datetime = out[i].Datetime.Add(time.Duration(out[i].ForecastHours) * time.Hour)
	}

	out.SortCanonical()
	return out
}

func (s *Store) memoKey(product string) string {
	return fmt.Sprintf("%s|%d|%d|%d|%s",
		s.cfg.key(), s.posHash, s.startDate.UnixNano(), s.endDate.UnixNano(), product)
}

func containsAdvisory(codes []AdvisoryCode, code AdvisoryCode) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// hashPositions fingerprints the table's position values so in-place
// coordinate edits that leave the configuration untouched still trigger
// a velocity recompute.
func hashPositions(table Table) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	for _, r := range table {
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(r.Latitude))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(r.Longitude))
		h.Write(buf[:])
	}
	return h.Sum64()
}

func missingVelocity(table Table) bool {
	for _, r := range table {
		if math.IsNaN(r.Speed) || math.IsNaN(r.Direction) {
			return true
		}
	}
	return false
}
