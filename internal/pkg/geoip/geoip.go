// Package geoip resolves client IPs to coarse locations using an
// optional GeoLite2 database. Geo enrichment is best effort: a missing
// database file or an unresolvable IP yields empty fields, never an
// error surfaced to the tracking request.
package geoip

import (
	"log/slog"
	"net"
	"os"

	"github.com/oschwald/geoip2-golang"
)

// Resolver wraps a GeoLite2 city database reader.
type Resolver struct {
	reader *geoip2.Reader
	logger *slog.Logger
}

// Location is the subset of GeoLite2 data recorded on a hit.
type Location struct {
	Country string // ISO 3166-1 alpha-2 code
	City    string
	Region  string
}

// NewResolver opens the GeoLite2 database at path. An empty path or a
// missing file disables geo enrichment and returns a nil resolver, which
// every method tolerates.
func NewResolver(path string, logger *slog.Logger) *Resolver {
	if path == "" {
		logger.Debug("GeoIP database path not configured - geo enrichment disabled")
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("GeoLite2 database not found - geo enrichment disabled",
			slog.String("path", path))
		return nil
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		logger.Error("Failed to open GeoLite2 database - geo enrichment disabled",
			slog.String("path", path),
			slog.Any("error", err))
		return nil
	}

	logger.Info("GeoLite2 database loaded", slog.String("path", path))
	return &Resolver{reader: reader, logger: logger}
}

// Lookup resolves an IP to a location. Unparsable or unknown IPs return
// the zero Location.
func (r *Resolver) Lookup(ip string) Location {
	if r == nil || r.reader == nil {
		return Location{}
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{}
	}

	record, err := r.reader.City(parsed)
	if err != nil {
		r.logger.Debug("GeoIP lookup failed", slog.String("ip", ip), slog.Any("error", err))
		return Location{}
	}

	loc := Location{
		Country: record.Country.IsoCode,
		City:    record.City.Names["en"],
	}
	if len(record.Subdivisions) > 0 {
		loc.Region = record.Subdivisions[0].Names["en"]
	}
	return loc
}

// Close releases the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
