package helper

import (
	"fmt"
	"strings"
)

// SecondsToMinutes converts a duration in seconds to mm:ss.mmm.
func SecondsToMinutes(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	minutes := int(seconds / 60)
	seconds = seconds - float64(minutes*60)
	milliseconds := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d.%03d", minutes, int(seconds), milliseconds)
}

// ToSectorTime formats a sector duration with millisecond precision.
func ToSectorTime(t float64) string {
	if t <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.3f", t)
}

// FormatLapTime renders a nullable lap duration; nil means the API has not
// published the value yet and renders as a placeholder.
func FormatLapTime(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	return SecondsToMinutes(*seconds)
}

// FormatSector renders a nullable sector duration.
func FormatSector(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	return ToSectorTime(*seconds)
}

// GetDriverCodeName reads a name with possible surname and returns the first
// letter of the name and the first letters of the surname, upper-cased.
func GetDriverCodeName(name string) string {
	if name == "" {
		return ""
	}
	words := strings.Split(name, " ")
	code := string(words[0][0])
	if len(words) > 1 {
		if len(words[1]) > 2 {
			code += words[1][:2]
		} else {
			code += words[1]
		}
	} else {
		if len(words[0]) > 2 {
			code += words[0][1:3]
		} else {
			code += words[0]
		}
	}
	return strings.ToUpper(code)
}
