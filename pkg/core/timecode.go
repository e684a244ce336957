package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FramesToTimecode formats a frame count as HH:MM:SS.mmm.
func FramesToTimecode(frames int, fps float64) string {
	if fps <= 0 {
		return "00:00:00.000"
	}
	totalMillis := int64(math.Floor(float64(frames) / fps * 1000))
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	seconds := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

// ParseTimecode converts HH:MM:SS[.mmm] into a frame count at fps.
func ParseTimecode(s string, fps float64) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timecode %q: want HH:MM:SS.mmm", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timecode %q: hours: %w", s, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timecode %q: minutes: %w", s, err)
	}
	secPart, msPart, _ := strings.Cut(parts[2], ".")
	seconds, err := strconv.Atoi(secPart)
	if err != nil {
		return 0, fmt.Errorf("timecode %q: seconds: %w", s, err)
	}
	millis := 0
	if msPart != "" {
		msPart = (msPart + "00")[:3]
		if millis, err = strconv.Atoi(msPart); err != nil {
			return 0, fmt.Errorf("timecode %q: milliseconds: %w", s, err)
		}
	}
	if hours < 0 || minutes < 0 || seconds < 0 || millis < 0 {
		return 0, fmt.Errorf("timecode %q: negative component", s)
	}
	total := float64(hours*3600+minutes*60+seconds) + float64(millis)/1000
	return int(math.Floor(total*fps + 1e-9)), nil
}

// ParseFrameOrTimecode accepts either a plain frame number or a timecode.
func ParseFrameOrTimecode(s string, fps float64) (int, error) {
	if strings.Contains(s, ":") {
		return ParseTimecode(s, fps)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("frame %q: %w", s, err)
	}
	return n, nil
}
