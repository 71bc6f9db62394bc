package dimension

import "testing"

func TestAddSub(t *testing.T) {
	if got := Add(Length, Length); got != Area {
		t.Errorf("Length+Length = %v, want Area %v", got, Area)
	}
	if got := Sub(Area, Length); got != Length {
		t.Errorf("Area-Length = %v, want Length %v", got, Length)
	}
}

func TestScale(t *testing.T) {
	if got := Scale(Length, 3); got != Volume {
		t.Errorf("Length*3 = %v, want Volume %v", got, Volume)
	}
	if got := Scale(Dimensionless, 5); !IsDimensionless(got) {
		t.Errorf("Dimensionless*5 = %v, want dimensionless", got)
	}
}

func TestDerivedDimensions(t *testing.T) {
	tests := []struct {
		name string
		got  Vector
		want Vector
	}{
		{"velocity", Sub(Length, Time), Velocity},
		{"acceleration", Sub(Velocity, Time), Acceleration},
		{"force", Add(Mass, Acceleration), Force},
		{"pressure", Sub(Force, Area), Pressure},
		{"energy", Add(Force, Length), Energy},
		{"power", Sub(Energy, Time), Power},
		{"frequency", Sub(Dimensionless, Time), Frequency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	if Name(Dimensionless) != "dimensionless" {
		t.Errorf("unexpected name for dimensionless: %s", Name(Dimensionless))
	}
	if Name(Force) != "force" {
		t.Errorf("unexpected name for force: %s", Name(Force))
	}
	custom := Vector{Length: 2, Mass: -1}
	if Name(custom) == "" {
		t.Errorf("expected fallback name for custom vector")
	}
}
