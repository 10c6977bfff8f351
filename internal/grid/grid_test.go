package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/MrMark1127/arma-tactical/pkg/core"
)

func TestEncode_SpecimenCoordinate(t *testing.T) {
	ref, err := Encode(core.Position2D{X: 1234, Y: 5678})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ref.Major != "B5" {
		t.Errorf("expected major B5, got %s", ref.Major)
	}
	if ref.Minor != "B5-26" {
		t.Errorf("expected minor B5-26, got %s", ref.Minor)
	}
	if ref.Precise != "B5-26-3478" {
		t.Errorf("expected precise B5-26-3478, got %s", ref.Precise)
	}
}

func TestEncode_ZeroPadsMicroOffsets(t *testing.T) {
	ref, err := Encode(core.Position2D{X: 1203, Y: 5605})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Precise != "B5-26-0305" {
		t.Errorf("expected precise B5-26-0305, got %s", ref.Precise)
	}
}

func TestEncode_Origin(t *testing.T) {
	ref, err := Encode(core.Position2D{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Precise != "A0-00-0000" {
		t.Errorf("expected precise A0-00-0000, got %s", ref.Precise)
	}
}

func TestEncode_RejectsNegativeCoordinates(t *testing.T) {
	if _, err := Encode(core.Position2D{X: -1, Y: 100}); !errors.Is(err, ErrMalformedReference) {
		t.Errorf("expected ErrMalformedReference for negative easting, got %v", err)
	}
	if _, err := Encode(core.Position2D{X: 100, Y: -1}); !errors.Is(err, ErrMalformedReference) {
		t.Errorf("expected ErrMalformedReference for negative northing, got %v", err)
	}
}

func TestEncode_RejectsEastingPastLetterGrid(t *testing.T) {
	if _, err := Encode(core.Position2D{X: 26000, Y: 100}); !errors.Is(err, ErrMalformedReference) {
		t.Errorf("expected ErrMalformedReference past letter Z, got %v", err)
	}
}

func TestDecode_RoundTripAtMinorPrecision(t *testing.T) {
	coords := []core.Position2D{
		{X: 1234, Y: 5678},
		{X: 0, Y: 0},
		{X: 12999, Y: 12999},
		{X: 450, Y: 13000},
	}
	for _, p := range coords {
		ref, err := Encode(p)
		if err != nil {
			t.Fatalf("encode %v: unexpected error: %v", p, err)
		}
		got, err := Decode(ref.Minor)
		if err != nil {
			t.Fatalf("decode %s: unexpected error: %v", ref.Minor, err)
		}
		if math.Abs(got.X-p.X) >= 100 || math.Abs(got.Y-p.Y) >= 100 {
			t.Errorf("minor round-trip of %v gave %v, off by more than 100m", p, got)
		}
	}
}

func TestDecode_RoundTripAtMicroPrecision(t *testing.T) {
	coords := []core.Position2D{
		{X: 1234, Y: 5678},
		{X: 99, Y: 9901},
		{X: 12000, Y: 7},
	}
	for _, p := range coords {
		ref, err := Encode(p)
		if err != nil {
			t.Fatalf("encode %v: unexpected error: %v", p, err)
		}
		got, err := Decode(ref.Precise)
		if err != nil {
			t.Fatalf("decode %s: unexpected error: %v", ref.Precise, err)
		}
		if math.Abs(got.X-p.X) >= 1 || math.Abs(got.Y-p.Y) >= 1 {
			t.Errorf("micro round-trip of %v gave %v, off by a meter or more", p, got)
		}
	}
}

func TestDecode_MajorOnly(t *testing.T) {
	got, err := Decode("B5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.X != 1000 || got.Y != 5000 {
		t.Errorf("expected (1000, 5000), got %v", got)
	}
}

func TestDecode_LowercaseAccepted(t *testing.T) {
	got, err := Decode("b5-26")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.X != 1200 || got.Y != 5600 {
		t.Errorf("expected (1200, 5600), got %v", got)
	}
}

func TestDecode_MultiDigitNorthing(t *testing.T) {
	got, err := Decode("C12-40-0950")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.X != 2409 || got.Y != 12050 {
		t.Errorf("expected (2409, 12050), got %v", got)
	}
}

func TestDecode_MalformedInputs(t *testing.T) {
	malformed := []string{
		"",
		"5",          // missing letter
		"B",          // missing northing digits
		"5B",         // letter and digits swapped
		"B5-2",       // minor segment too short
		"B5-266",     // minor segment too long
		"B5-2x",      // non-numeric minor digit
		"B5-26-34",   // micro segment too short
		"B5-26-34x8", // non-numeric micro digit
		"B5-26-3478-12", // too many segments
		"!5-26",
	}
	for _, in := range malformed {
		got, err := Decode(in)
		if err == nil {
			t.Errorf("expected error decoding %q, got %v", in, got)
			continue
		}
		if !errors.Is(err, ErrMalformedReference) {
			t.Errorf("decoding %q: expected ErrMalformedReference, got %v", in, err)
		}
	}
}
