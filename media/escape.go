package media

import (
	"fmt"
	"strings"
)

// EscapeFilterPath makes a file path safe inside an ffmpeg filter argument
func EscapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "\\'")
	return path
}

// EscapeText escapes literal drawtext text
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, ":", "\\:")
	s = strings.ReplaceAll(s, "%", "\\%")
	return s
}

// Seconds formats a time value for ffmpeg arguments
func Seconds(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// ConcatLine is one entry of an ffmpeg concat demuxer list
func ConcatLine(path string) string {
	return fmt.Sprintf("file '%s'", strings.ReplaceAll(path, "'", "'\\''"))
}
