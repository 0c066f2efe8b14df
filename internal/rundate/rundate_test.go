package rundate

import (
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	now := time.Date(2024, time.March, 2, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		lag  int
		want Date
	}{
		{"no lag", 0, Date{2024, time.March, 2}},
		{"default lag", 2, Date{2024, time.February, 29}},
		{"crosses year", 62, Date{2023, time.December, 31}},
		{"negative lag clamps", -3, Date{2024, time.March, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(now, tt.lag); got != tt.want {
				t.Errorf("Resolve(%d) = %v, want %v", tt.lag, got, tt.want)
			}
		})
	}
}

func TestDate_Stamp(t *testing.T) {
	d := Date{Year: 2024, Month: time.January, Day: 5}
	if got := d.Stamp(); got != "01052024" {
		t.Errorf("Stamp() = %s, want 01052024", got)
	}
	if got := d.String(); got != "2024-01-05" {
		t.Errorf("String() = %s, want 2024-01-05", got)
	}
}

func TestOf_UsesLocation(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	ts := time.Date(2024, time.June, 1, 2, 0, 0, 0, time.UTC).In(loc)
	if got := Of(ts); got != (Date{2024, time.May, 31}) {
		t.Errorf("Of() = %v, want 2024-05-31", got)
	}
}
