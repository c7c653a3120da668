package model

import (
	"strings"

	"github.com/jwalitptl/shadowing-api/internal/geo"
)

// Shadowing statuses a clinic can be in.
const (
	StatusAvailable   = "available"
	StatusMixed       = "mixed"
	StatusUnavailable = "unavailable"
	StatusPending     = "pending"
)

var ShadowingStatuses = []string{StatusAvailable, StatusMixed, StatusUnavailable, StatusPending}

// FilterAll disables a clinic filter criterion.
const FilterAll = "all"

type Clinic struct {
	ID              string  `db:"id" json:"id"`
	Name            string  `db:"name" json:"name"`
	Address         string  `db:"address" json:"address"`
	Phone           string  `db:"phone" json:"phone"`
	Lat             float64 `db:"lat" json:"lat"`
	Lng             float64 `db:"lng" json:"lng"`
	Zip             string  `db:"zip" json:"zip"`
	ShadowingStatus string  `db:"shadowing_status" json:"shadowingStatus"`
	Notes           string  `db:"notes" json:"notes"`
	LastVerifiedAt  string  `db:"last_verified_at" json:"lastVerifiedAt"`
}

func (c *Clinic) Point() geo.Point {
	return geo.Point{Lat: c.Lat, Lng: c.Lng}
}

// IsShadowingStatus reports whether s is one of ShadowingStatuses.
func IsShadowingStatus(s string) bool {
	for _, status := range ShadowingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ClinicFilter is a pure predicate over clinics. Empty fields and FilterAll
// disable the matching criterion; a nil RadiusMiles disables the radius check.
type ClinicFilter struct {
	Status      string
	ZipPrefix   string
	RadiusMiles *float64
	Center      geo.Point
}

func (f ClinicFilter) Matches(c *Clinic) bool {
	if f.Status != "" && f.Status != FilterAll && c.ShadowingStatus != f.Status {
		return false
	}
	if zip := strings.TrimSpace(f.ZipPrefix); zip != "" && !strings.HasPrefix(c.Zip, zip) {
		return false
	}
	if f.RadiusMiles != nil && geo.DistanceMiles(f.Center, c.Point()) > *f.RadiusMiles {
		return false
	}
	return true
}

// Apply returns the clinics matching f, preserving order.
func (f ClinicFilter) Apply(clinics []*Clinic) []*Clinic {
	out := make([]*Clinic, 0, len(clinics))
	for _, c := range clinics {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}
