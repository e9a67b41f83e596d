package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"portfolio_blog/internal/feature/posts/domain/entity"
)

// DateLayout is the only accepted date format.
const DateLayout = "2006-01-02"

// PostFields is the editable part of a post as submitted by a form.
type PostFields struct {
	Title       string
	Description string
	Date        string
	Address     string
	Latitude    string
	Longitude   string
	MapEmbed    string
}

// ParseDate parses YYYY-MM-DD. Empty input means no date.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return &d, nil
}

// ParseCoordinate parses a latitude (limit 90) or longitude (limit 180).
// Empty input means no coordinate.
func ParseCoordinate(s string, limit float64) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.Abs(v) > limit {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	return &v, nil
}

// Apply validates f and overwrites the editable fields of p.
// p is left untouched when any field is invalid.
func (f PostFields) Apply(p *entity.Post) error {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return ErrTitleRequired
	}
	date, err := ParseDate(f.Date)
	if err != nil {
		return err
	}
	lat, err := ParseCoordinate(f.Latitude, 90)
	if err != nil {
		return err
	}
	lng, err := ParseCoordinate(f.Longitude, 180)
	if err != nil {
		return err
	}

	p.Title = title
	p.Description = f.Description
	p.Date = date
	p.Address = strings.TrimSpace(f.Address)
	p.Latitude = lat
	p.Longitude = lng
	p.MapEmbed = f.MapEmbed
	return nil
}
