// Package weather resolves the configured location to outside conditions and a human
// readable label, using OpenWeatherMap when an API key is configured and the free
// Open-Meteo forecast + geocoding APIs otherwise.
package weather

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Update is the result of one weather poll.
type Update struct {
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	Location    string    `json:"location"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type primaryProvider interface {
	CurrentByCity(ctx context.Context, city string) (Conditions, error)
	CurrentByCoordinates(ctx context.Context, lat, lon float64) (Conditions, error)
}

type fallbackProvider interface {
	Current(ctx context.Context, lat, lon float64) (Conditions, error)
}

type geocoder interface {
	Search(ctx context.Context, name string, count int) ([]Location, error)
}

// Service resolves outside weather for one configured location string. The location
// is either "lat,lon" or "city[,state][,country]".
type Service struct {
	apiKey   string
	location string
	primary  primaryProvider
	fallback fallbackProvider
	geocoder geocoder
	logger   *slog.Logger
}

func New(apiKey, location string, primary primaryProvider, fallback fallbackProvider, geocoder geocoder, logger *slog.Logger) *Service {
	return &Service{
		apiKey:   apiKey,
		location: location,
		primary:  primary,
		fallback: fallback,
		geocoder: geocoder,
		logger:   logger,
	}
}

// Update fetches conditions and resolves the location label. Used as the weather
// poller's update function. The two lookups are independent and run concurrently.
func (s *Service) Update(ctx context.Context) (Update, error) {
	var update Update
	var g errgroup.Group
	g.Go(func() error {
		conditions := s.readOutside(ctx)
		update.Temperature = conditions.Temperature
		update.Humidity = conditions.Humidity
		return nil
	})
	g.Go(func() error {
		update.Location = s.resolveLabel(ctx)
		return nil
	})
	_ = g.Wait()
	update.LastUpdated = time.Now()
	return update, nil
}

// readOutside fetches current outside conditions. Failures surface as absent values.
func (s *Service) readOutside(ctx context.Context) Conditions {
	if s.location == "" {
		return Conditions{}
	}
	if s.apiKey == "" {
		lat, lon, ok := s.resolveCoordinates(ctx, s.location)
		if !ok {
			return Conditions{}
		}
		conditions, err := s.fallback.Current(ctx, lat, lon)
		if err != nil {
			s.logger.Warn("weather fetch failed", "err", err)
			return Conditions{}
		}
		return conditions
	}

	conditions, err := s.fetchPrimary(ctx)
	if err != nil {
		// one retry by city name, using the location string as-is
		s.logger.Debug("weather fetch failed, retrying by city", "err", err)
		if conditions, err = s.primary.CurrentByCity(ctx, s.location); err != nil {
			s.logger.Warn("weather fetch failed", "err", err)
			return Conditions{}
		}
	}
	return conditions
}

func (s *Service) fetchPrimary(ctx context.Context) (Conditions, error) {
	if lat, lon, ok := parseCoordinates(splitLocation(s.location)); ok {
		return s.primary.CurrentByCoordinates(ctx, lat, lon)
	}
	return s.primary.CurrentByCity(ctx, s.location)
}

// resolveLabel produces the display label for the configured location. A literal
// "lat,lon" is echoed without a geocoding call; otherwise the city token is geocoded
// and the best candidate's composed name is used.
func (s *Service) resolveLabel(ctx context.Context) string {
	if s.location == "" {
		return ""
	}
	tokens := splitLocation(s.location)
	if _, _, ok := parseCoordinates(tokens); ok {
		return tokens[0] + ", " + tokens[1]
	}
	if len(tokens) == 0 {
		return ""
	}
	city := tokens[0]

	candidates, err := s.geocoder.Search(ctx, city, 10)
	if err != nil {
		s.logger.Warn("geocoding failed", "err", err)
		return city
	}
	if len(candidates) == 0 {
		return city
	}

	best := selectCandidate(candidates, tokens)
	label := composeLabel(best)
	if label == "" {
		return city
	}
	return label
}

// resolveCoordinates turns the location string into coordinates for the fallback
// provider, applying the same candidate filter as resolveLabel.
func (s *Service) resolveCoordinates(ctx context.Context, location string) (float64, float64, bool) {
	tokens := splitLocation(location)
	if lat, lon, ok := parseCoordinates(tokens); ok {
		return lat, lon, true
	}
	if len(tokens) == 0 {
		return 0, 0, false
	}

	candidates, err := s.geocoder.Search(ctx, tokens[0], 10)
	if err != nil {
		s.logger.Warn("geocoding failed", "err", err)
		return 0, 0, false
	}
	if len(candidates) == 0 {
		return 0, 0, false
	}

	best := selectCandidate(candidates, tokens)
	if best.Latitude == nil || best.Longitude == nil {
		return 0, 0, false
	}
	return *best.Latitude, *best.Longitude, true
}

// splitLocation splits the location string on commas, trimming whitespace and
// dropping empty tokens.
func splitLocation(location string) []string {
	var tokens []string
	for _, token := range strings.Split(location, ",") {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// parseCoordinates recognizes a literal coordinate pair: exactly two numeric tokens.
func parseCoordinates(tokens []string) (float64, float64, bool) {
	if len(tokens) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// stateNames expands state abbreviations used in the location string. Deliberately
// minimal: only the abbreviation actually used in practice.
var stateNames = map[string]string{
	"IL": "Illinois",
}

// selectCandidate picks the first candidate matching the optional state (2nd token)
// and country (3rd token) filters. If no candidate matches, the provider's first
// (most relevant) candidate is used, never "no result".
func selectCandidate(candidates []Location, tokens []string) Location {
	var expectedState, expectedCountry string
	if len(tokens) > 1 {
		expectedState = tokens[1]
		if name, ok := stateNames[strings.ToUpper(expectedState)]; ok {
			expectedState = name
		}
	}
	if len(tokens) > 2 {
		expectedCountry = tokens[2]
	}

	for _, candidate := range candidates {
		if expectedCountry != "" && !strings.EqualFold(candidate.CountryCode, expectedCountry) {
			continue
		}
		if expectedState != "" && !matchesAdmin(candidate.Admin1, expectedState) {
			continue
		}
		return candidate
	}
	return candidates[0]
}

// matchesAdmin accepts an exact match or substring containment, case-insensitive.
func matchesAdmin(admin1, expected string) bool {
	return strings.Contains(strings.ToLower(admin1), strings.ToLower(expected))
}

func composeLabel(l Location) string {
	var parts []string
	for _, part := range []string{l.Name, l.Admin1, l.CountryCode} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}
