package gps

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/adrianmo/go-nmea"
)

// acceptedPrefixes are the only sentence types this worker considers;
// every accepted sentence is routed through the same GGA-style
// index-based extractor, which is a preserved property of the
// original implementation rather than a field-layout bug fix (RMC's
// real comma layout differs from GGA's) — see the index mapping in
// extractGGAStyle below. adrianmo/go-nmea is used only ahead of this,
// to validate checksum and sentence shape.
var acceptedPrefixes = []string{"$GPGGA", "$GPRMC"}

// accepted reports whether line begins with a sentence type this
// worker processes.
func accepted(line string) bool {
	for _, p := range acceptedPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// validate runs the line through adrianmo/go-nmea purely for
// checksum/shape validation; a non-nil error means the line is
// malformed and must be dropped before field extraction ever runs.
func validate(line string) error {
	_, err := nmea.Parse(line)
	return err
}

// extractGGAStyle applies the spec's GGA-style, comma-indexed field
// extraction to an accepted line regardless of whether it is actually
// a $GPGGA or $GPRMC sentence: [1]=time, [2]=lat, [3]=N/S, [4]=lon,
// [5]=E/W, [6]=fix quality, [9]=altitude. Requires at least 10 fields
// and a non-zero fix-quality field; otherwise the sentence is
// dropped.
func extractGGAStyle(line string) (parsedFix, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 10 {
		return parsedFix{}, false
	}

	fixQuality := strings.TrimSpace(fields[6])
	if fixQuality == "" || fixQuality == "0" {
		return parsedFix{}, false
	}

	lat := convertCoordinate(fields[2], fields[3])
	lon := convertCoordinate(fields[4], fields[5])

	altitude, _ := strconv.ParseFloat(strings.TrimSpace(fields[9]), 64)

	return parsedFix{
		Latitude:  lat,
		Longitude: lon,
		Altitude:  altitude,
		FixTime:   formatFixTime(fields[1]),
	}, true
}

// convertCoordinate converts an NMEA "DDMM.mmmm"-style field plus a
// hemisphere letter into signed decimal degrees: deg = floor(raw/100),
// min = raw - 100*deg, value = deg + min/60, sign flipped for S or W.
// A non-numeric field parses as 0.0, matching the original
// implementation's use of atof (which never fails) rather than a
// strict parser — a sentence with a garbage coordinate field still
// produces a fix, just one with lat/lon pinned to 0.
func convertCoordinate(raw, hemisphere string) float64 {
	value, _ := strconv.ParseFloat(strings.TrimSpace(raw), 64)

	deg := math.Floor(value / 100)
	min := value - 100*deg
	result := deg + min/60

	switch strings.TrimSpace(hemisphere) {
	case "S", "W":
		result = -result
	}
	return result
}

// formatFixTime turns an NMEA "HHMMSS.sss" time field into "HH:MM:SS"
// using the first six characters.
func formatFixTime(field string) string {
	field = strings.TrimSpace(field)
	if len(field) < 6 {
		return field
	}
	t := field[:6]
	return fmt.Sprintf("%s:%s:%s", t[0:2], t[2:4], t[4:6])
}
