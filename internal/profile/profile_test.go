package profile

import (
	"errors"
	"sort"
	"testing"

	"cloak-cam/pkg/colorutil"
)

func TestResolveKnownColors(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatal("no colors registered")
	}
	for _, name := range names {
		p, err := Resolve(name)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", name, err)
		}
		if p.Name != name {
			t.Errorf("Resolve(%q) returned profile named %q", name, p.Name)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("built-in profile %q invalid: %v", name, err)
		}
	}
}

func TestResolveUnknownColor(t *testing.T) {
	_, err := Resolve("chartreuse")
	if !errors.Is(err, ErrUnknownColor) {
		t.Fatalf("expected ErrUnknownColor, got %v", err)
	}
}

func TestNamesSorted(t *testing.T) {
	if !sort.StringsAreSorted(Names()) {
		t.Errorf("Names() not sorted: %v", Names())
	}
}

// Red hue wraps around the 0/180 seam, so the profile needs a range touching
// each end.
func TestRedWrapsHueSeam(t *testing.T) {
	red, err := Resolve("red")
	if err != nil {
		t.Fatal(err)
	}
	if len(red.Ranges) != 2 {
		t.Fatalf("red should have 2 ranges, got %d", len(red.Ranges))
	}
	var touchesLow, touchesHigh bool
	for _, r := range red.Ranges {
		if r.HueMin == 0 {
			touchesLow = true
		}
		if r.HueMax >= 170 {
			touchesHigh = true
		}
	}
	if !touchesLow || !touchesHigh {
		t.Errorf("red ranges do not cover both ends of the hue circle: %+v", red.Ranges)
	}
}

func TestRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       Range
		wantErr bool
	}{
		{
			name:    "full range",
			r:       Range{HueMin: 0, HueMax: 180, SatMin: 0, SatMax: 255, ValMin: 0, ValMax: 255},
			wantErr: false,
		},
		{
			name:    "inverted hue",
			r:       Range{HueMin: 50, HueMax: 10, SatMin: 0, SatMax: 255, ValMin: 0, ValMax: 255},
			wantErr: true,
		},
		{
			name:    "inverted saturation",
			r:       Range{HueMin: 0, HueMax: 180, SatMin: 200, SatMax: 100, ValMin: 0, ValMax: 255},
			wantErr: true,
		},
		{
			name:    "inverted value",
			r:       Range{HueMin: 0, HueMax: 180, SatMin: 0, SatMax: 255, ValMin: 255, ValMax: 0},
			wantErr: true,
		},
		{
			name:    "hue above domain",
			r:       Range{HueMin: 0, HueMax: 200, SatMin: 0, SatMax: 255, ValMin: 0, ValMax: 255},
			wantErr: true,
		},
		{
			name:    "saturation above domain",
			r:       Range{HueMin: 0, HueMax: 180, SatMin: 0, SatMax: 300, ValMin: 0, ValMax: 255},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProfileValidate(t *testing.T) {
	if err := (Profile{Name: "empty"}).Validate(); err == nil {
		t.Error("profile with no ranges should not validate")
	}
	if err := (Profile{Ranges: []Range{{HueMax: 10, SatMax: 255, ValMax: 255}}}).Validate(); err == nil {
		t.Error("profile without a name should not validate")
	}
	bad := Profile{Name: "bad", Ranges: []Range{
		{HueMin: 90, HueMax: 10, SatMin: 0, SatMax: 255, ValMin: 0, ValMax: 255},
	}}
	if err := bad.Validate(); err == nil {
		t.Error("profile with an inverted range should not validate")
	}
}

// Each built-in profile should contain the canonical BGR rendering of its
// own color, cross-checked through the shared HSV conversion.
func TestBuiltinsContainTheirColor(t *testing.T) {
	tests := []struct {
		color   string
		b, g, r float64
	}{
		{"red", 0, 0, 255},
		{"green", 0, 255, 0},
		{"blue", 255, 0, 0},
		{"yellow", 0, 255, 255},
		{"cyan", 255, 255, 0},
		{"orange", 0, 165, 255},
		{"purple", 128, 0, 128},
		{"pink", 180, 105, 255},
		{"white", 255, 255, 255},
		{"black", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			p, err := Resolve(tt.color)
			if err != nil {
				t.Fatal(err)
			}
			h, s, v := colorutil.BGRToHSV(tt.b, tt.g, tt.r)
			if !p.Contains(h, s, v) {
				t.Errorf("profile %q does not contain its own color: HSV(%.1f, %.1f, %.1f) outside %+v",
					tt.color, h, s, v, p.Ranges)
			}
		})
	}
}

func TestContainsInclusiveBounds(t *testing.T) {
	r := Range{HueMin: 10, HueMax: 20, SatMin: 100, SatMax: 200, ValMin: 50, ValMax: 150}
	for _, tc := range []struct {
		h, s, v float64
		want    bool
	}{
		{10, 100, 50, true},   // all at lower bounds
		{20, 200, 150, true},  // all at upper bounds
		{9.9, 150, 100, false}, // just below hue
		{15, 201, 100, false},  // just above saturation
	} {
		if got := r.Contains(tc.h, tc.s, tc.v); got != tc.want {
			t.Errorf("Contains(%v, %v, %v) = %v, want %v", tc.h, tc.s, tc.v, got, tc.want)
		}
	}
}
