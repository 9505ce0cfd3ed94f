package subtitles

import (
	"strings"

	"reel-pipeline/types"
)

// Clean trims text, drops empty segments and pulls every start earlier by
// lead seconds (never below zero) so text appears just before the voice
func Clean(segments []types.SubtitleSegment, lead float64) []types.SubtitleSegment {
	var out []types.SubtitleSegment
	for _, s := range segments {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" {
			continue
		}
		s.Start -= lead
		if s.Start < 0 {
			s.Start = 0
		}
		if s.End < s.Start {
			s.End = s.Start
		}
		out = append(out, s)
	}
	return out
}

// Merge joins neighbours whose gap is strictly below maxGap. maxGap <= 0
// disables merging.
func Merge(segments []types.SubtitleSegment, maxGap float64) []types.SubtitleSegment {
	if len(segments) == 0 {
		return nil
	}
	out := []types.SubtitleSegment{segments[0]}
	if maxGap <= 0 {
		return append(out, segments[1:]...)
	}
	for _, next := range segments[1:] {
		prev := &out[len(out)-1]
		if next.Start-prev.End < maxGap {
			prev.Text = prev.Text + " " + next.Text
			if next.End > prev.End {
				prev.End = next.End
			}
			continue
		}
		out = append(out, next)
	}
	return out
}
