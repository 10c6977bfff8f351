// Package grid encodes game-world coordinates as human-readable grid
// references and decodes them back. A reference has up to three precision
// levels: major (1000m cell, letter + digits), minor (100m keypad digits)
// and micro (1m offsets), e.g. "B5", "B5-26", "B5-26-3478".
package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrMark1127/arma-tactical/pkg/core"
)

// ErrMalformedReference is returned when a grid string cannot be parsed.
// Decoding never falls back to a default coordinate.
var ErrMalformedReference = errors.New("malformed grid reference")

// maxLetterCells caps the easting major cells at the letter alphabet.
const maxLetterCells = 26

// Reference is a coordinate encoded at its three precision levels.
type Reference struct {
	Major   string `json:"major"`   // 1000m cell, e.g. "B5"
	Minor   string `json:"minor"`   // 100m cell, e.g. "B5-26"
	Precise string `json:"precise"` // 1m offsets, e.g. "B5-26-3478"
}

// Encode converts a game-world coordinate in meters to a grid reference.
// X maps to the letter axis, Y to the numeric axis. Coordinates must be
// non-negative and the easting must fit the letter alphabet.
func Encode(p core.Position2D) (Reference, error) {
	if p.X < 0 || p.Y < 0 {
		return Reference{}, fmt.Errorf("%w: negative coordinate (%f, %f)", ErrMalformedReference, p.X, p.Y)
	}

	majorX := int(p.X) / 1000
	majorY := int(p.Y) / 1000
	if majorX >= maxLetterCells {
		return Reference{}, fmt.Errorf("%w: easting %f exceeds letter grid", ErrMalformedReference, p.X)
	}

	minorX := (int(p.X) % 1000) / 100
	minorY := (int(p.Y) % 1000) / 100
	microX := int(p.X) % 100
	microY := int(p.Y) % 100

	major := fmt.Sprintf("%c%d", 'A'+majorX, majorY)
	minor := fmt.Sprintf("%s-%d%d", major, minorX, minorY)
	precise := fmt.Sprintf("%s-%02d%02d", minor, microX, microY)

	return Reference{Major: major, Minor: minor, Precise: precise}, nil
}

// Decode parses a grid reference at any of the three precision levels back
// to a coordinate in meters (the southwest corner of the referenced cell).
func Decode(ref string) (core.Position2D, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if ref == "" {
		return core.Position2D{}, fmt.Errorf("%w: empty string", ErrMalformedReference)
	}

	segments := strings.Split(ref, "-")
	if len(segments) > 3 {
		return core.Position2D{}, fmt.Errorf("%w: too many segments in %q", ErrMalformedReference, ref)
	}

	x, y, err := decodeMajor(segments[0])
	if err != nil {
		return core.Position2D{}, err
	}

	if len(segments) > 1 {
		minorX, minorY, err := decodeDigitPair(segments[1])
		if err != nil {
			return core.Position2D{}, err
		}
		x += float64(minorX) * 100
		y += float64(minorY) * 100
	}

	if len(segments) > 2 {
		microX, microY, err := decodeMicro(segments[2])
		if err != nil {
			return core.Position2D{}, err
		}
		x += float64(microX)
		y += float64(microY)
	}

	return core.Position2D{X: x, Y: y}, nil
}

// decodeMajor parses "<Letter><digits>" into the 1000m cell origin.
func decodeMajor(segment string) (x, y float64, err error) {
	if len(segment) < 2 {
		return 0, 0, fmt.Errorf("%w: major segment %q too short", ErrMalformedReference, segment)
	}
	letter := segment[0]
	if letter < 'A' || letter > 'Z' {
		return 0, 0, fmt.Errorf("%w: %q does not start with a letter", ErrMalformedReference, segment)
	}
	majorY, err := strconv.Atoi(segment[1:])
	if err != nil || majorY < 0 {
		return 0, 0, fmt.Errorf("%w: bad northing digits in %q", ErrMalformedReference, segment)
	}
	return float64(letter-'A') * 1000, float64(majorY) * 1000, nil
}

// decodeDigitPair parses the two single keypad digits of a minor segment.
func decodeDigitPair(segment string) (x, y int, err error) {
	if len(segment) != 2 {
		return 0, 0, fmt.Errorf("%w: minor segment %q must be two digits", ErrMalformedReference, segment)
	}
	x, errX := strconv.Atoi(segment[:1])
	y, errY := strconv.Atoi(segment[1:])
	if errX != nil || errY != nil {
		return 0, 0, fmt.Errorf("%w: non-numeric minor segment %q", ErrMalformedReference, segment)
	}
	return x, y, nil
}

// decodeMicro parses the four-digit micro segment as two zero-padded
// two-digit meter offsets.
func decodeMicro(segment string) (x, y int, err error) {
	if len(segment) != 4 {
		return 0, 0, fmt.Errorf("%w: micro segment %q must be four digits", ErrMalformedReference, segment)
	}
	x, errX := strconv.Atoi(segment[:2])
	y, errY := strconv.Atoi(segment[2:])
	if errX != nil || errY != nil || x < 0 || y < 0 {
		return 0, 0, fmt.Errorf("%w: non-numeric micro segment %q", ErrMalformedReference, segment)
	}
	return x, y, nil
}
