// Package profile defines the cloak color registry: named colors mapped to
// one or more HSV detection ranges.
package profile

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownColor is returned by Resolve for names not in the registry.
var ErrUnknownColor = errors.New("unknown cloak color")

// Range is an inclusive HSV interval using the OpenCV convention:
// hue 0-180, saturation and value 0-255.
type Range struct {
	HueMin, HueMax float64
	SatMin, SatMax float64
	ValMin, ValMax float64
}

// Contains reports whether the HSV triple falls inside the range.
// All bounds are inclusive.
func (r Range) Contains(h, s, v float64) bool {
	return h >= r.HueMin && h <= r.HueMax &&
		s >= r.SatMin && s <= r.SatMax &&
		v >= r.ValMin && v <= r.ValMax
}

// Validate rejects ranges that could never match a pixel. An inverted
// channel pair (min > max) would silently produce an all-zero mask, so it
// is treated as a configuration error instead.
func (r Range) Validate() error {
	if r.HueMin > r.HueMax {
		return fmt.Errorf("hue range inverted: %v > %v", r.HueMin, r.HueMax)
	}
	if r.SatMin > r.SatMax {
		return fmt.Errorf("saturation range inverted: %v > %v", r.SatMin, r.SatMax)
	}
	if r.ValMin > r.ValMax {
		return fmt.Errorf("value range inverted: %v > %v", r.ValMin, r.ValMax)
	}
	if r.HueMin < 0 || r.HueMax > 180 {
		return fmt.Errorf("hue bounds [%v, %v] outside 0-180", r.HueMin, r.HueMax)
	}
	if r.SatMin < 0 || r.SatMax > 255 {
		return fmt.Errorf("saturation bounds [%v, %v] outside 0-255", r.SatMin, r.SatMax)
	}
	if r.ValMin < 0 || r.ValMax > 255 {
		return fmt.Errorf("value bounds [%v, %v] outside 0-255", r.ValMin, r.ValMax)
	}
	return nil
}

// Profile names a cloak color and the HSV ranges that detect it. A pixel
// matches the profile if it falls inside any one range; channels within a
// range are ANDed, ranges are ORed. Red needs two ranges because its hue
// wraps around the 0/180 seam; white and black are defined by saturation
// and value rather than hue.
type Profile struct {
	Name   string
	Ranges []Range
}

// Contains reports whether the HSV triple matches any of the profile's ranges.
func (p Profile) Contains(h, s, v float64) bool {
	for _, r := range p.Ranges {
		if r.Contains(h, s, v) {
			return true
		}
	}
	return false
}

// Validate checks the profile is well formed and every range can match.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if len(p.Ranges) == 0 {
		return fmt.Errorf("profile %q has no ranges", p.Name)
	}
	for i, r := range p.Ranges {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("profile %q range %d: %w", p.Name, i, err)
		}
	}
	return nil
}

// registry holds the built-in profiles. Populated once at init, read-only
// afterwards.
var registry = make(map[string]Profile)

// Resolve returns the profile registered under name.
func Resolve(name string) (Profile, error) {
	p, ok := registry[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	return p, nil
}

// Names returns all registered color names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func register(p Profile) {
	if err := p.Validate(); err != nil {
		panic(fmt.Sprintf("invalid built-in color profile: %v", err))
	}
	registry[p.Name] = p
}

func init() {
	// Hue wraps at the 0/180 seam, so red is the union of both ends.
	register(Profile{Name: "red", Ranges: []Range{
		{HueMin: 0, HueMax: 10, SatMin: 120, SatMax: 255, ValMin: 70, ValMax: 255},
		{HueMin: 170, HueMax: 180, SatMin: 120, SatMax: 255, ValMin: 70, ValMax: 255},
	}})
	register(Profile{Name: "green", Ranges: []Range{
		{HueMin: 35, HueMax: 85, SatMin: 80, SatMax: 255, ValMin: 40, ValMax: 255},
	}})
	register(Profile{Name: "blue", Ranges: []Range{
		{HueMin: 100, HueMax: 130, SatMin: 80, SatMax: 255, ValMin: 50, ValMax: 255},
	}})
	register(Profile{Name: "yellow", Ranges: []Range{
		{HueMin: 20, HueMax: 30, SatMin: 80, SatMax: 255, ValMin: 50, ValMax: 255},
	}})
	register(Profile{Name: "purple", Ranges: []Range{
		{HueMin: 140, HueMax: 170, SatMin: 80, SatMax: 255, ValMin: 50, ValMax: 255},
	}})
	register(Profile{Name: "orange", Ranges: []Range{
		{HueMin: 5, HueMax: 20, SatMin: 100, SatMax: 255, ValMin: 100, ValMax: 255},
	}})
	register(Profile{Name: "cyan", Ranges: []Range{
		{HueMin: 85, HueMax: 100, SatMin: 50, SatMax: 255, ValMin: 50, ValMax: 255},
	}})
	register(Profile{Name: "pink", Ranges: []Range{
		{HueMin: 150, HueMax: 170, SatMin: 50, SatMax: 255, ValMin: 100, ValMax: 255},
	}})
	// White is low saturation at high brightness; hue is irrelevant.
	register(Profile{Name: "white", Ranges: []Range{
		{HueMin: 0, HueMax: 179, SatMin: 0, SatMax: 30, ValMin: 200, ValMax: 255},
	}})
	// Black is anything dark enough, regardless of hue or saturation.
	register(Profile{Name: "black", Ranges: []Range{
		{HueMin: 0, HueMax: 179, SatMin: 0, SatMax: 255, ValMin: 0, ValMax: 50},
	}})
}
