package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"reel-pipeline/types"
)

var timeRegex = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}[,\.]\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}[,\.]\d{3})`)

// ParseSRT reads SRT blocks:
//
//	1
//	00:00:00,000 --> 00:00:02,500
//	Text here
func ParseSRT(r io.Reader) ([]types.SubtitleSegment, error) {
	var segments []types.SubtitleSegment
	scanner := bufio.NewScanner(r)

	var current *types.SubtitleSegment
	lineNum := 0
	flush := func() {
		if current != nil && current.Text != "" {
			segments = append(segments, *current)
		}
		current = nil
		lineNum = 0
	}

	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" {
			flush()
			continue
		}
		lineNum++

		switch lineNum {
		case 1:
			if _, err := strconv.Atoi(line); err == nil {
				current = &types.SubtitleSegment{}
			}
		case 2:
			if current != nil {
				m := timeRegex.FindStringSubmatch(line)
				if len(m) != 3 {
					current = nil
					continue
				}
				current.Start = ParseTimestamp(m[1])
				current.End = ParseTimestamp(m[2])
			}
		default:
			if current != nil {
				if current.Text != "" {
					current.Text += " "
				}
				current.Text += line
			}
		}
	}
	flush()

	return segments, scanner.Err()
}

// ParseSRTFile parses the SRT file at path
func ParseSRTFile(path string) ([]types.SubtitleSegment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSRT(f)
}

// FormatSRT renders segments, numbered from 1
func FormatSRT(segments []types.SubtitleSegment) string {
	var b strings.Builder
	for i, s := range segments {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, FormatTimestamp(s.Start), FormatTimestamp(s.End), s.Text)
	}
	return b.String()
}

// WriteSRTFile writes segments to path
func WriteSRTFile(path string, segments []types.SubtitleSegment) error {
	return os.WriteFile(path, []byte(FormatSRT(segments)), 0644)
}

// ParseTimestamp converts 00:00:01,500 (or 00:00:01.500) to seconds
func ParseTimestamp(ts string) float64 {
	ts = strings.Replace(ts, ",", ".", 1)
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0
	}
	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])
	secs, _ := strconv.ParseFloat(parts[2], 64)
	return float64(hours*3600+minutes*60) + secs
}

// FormatTimestamp converts seconds to 00:00:01,500
func FormatTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	ms := int64(sec*1000 + 0.5)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", ms/3600000, ms/60000%60, ms/1000%60, ms%1000)
}
