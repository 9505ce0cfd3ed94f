package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"reel-pipeline/config"
	"reel-pipeline/media"
	"reel-pipeline/types"
)

// kenBurnsFilter turns one still into frames of a slow centre zoom from 1.0
// to zoom. The 2x upscale before zoompan keeps the motion smooth.
func kenBurnsFilter(rc config.RenderConfig, frames int) string {
	w, h := rc.Width, rc.Height
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,scale=%d:%d,"+
			"zoompan=z='1+(%g-1)*on/%d':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:s=%dx%d:fps=%d,"+
			"setsar=1,format=yuv420p",
		w, h, w, h, 2*w, 2*h,
		rc.ZoomFactor, frames, frames, w, h, rc.FPS,
	)
}

// stockFilter fits a clip to the frame: scale to height, pad narrow clips,
// centre-crop, and optionally soften it so text stays readable
func stockFilter(rc config.RenderConfig, sc config.StockConfig) string {
	w, h := rc.Width, rc.Height
	f := fmt.Sprintf(
		"scale=-2:%d,pad='max(iw,%d)':ih:(ow-iw)/2:0,crop=%d:%d",
		h, w, w, h,
	)
	if sc.Stylize {
		if sc.BlurRadius > 0 {
			f += fmt.Sprintf(",boxblur=%d:1", sc.BlurRadius)
		}
		if sc.Dim > 0 {
			f += fmt.Sprintf(",eq=brightness=%g", -sc.Dim)
		}
	}
	return f + fmt.Sprintf(",fps=%d,setsar=1,format=yuv420p", rc.FPS)
}

// framesFor is the frame count of a clip lasting sec seconds, at least one
func framesFor(sec float64, fps int) int {
	n := int(math.Round(sec * float64(fps)))
	if n < 1 {
		n = 1
	}
	return n
}

// textOverlay is one drawtext layer; Start/End are ignored when Always is set
type textOverlay struct {
	TextFile string
	Start    float64
	End      float64
	Always   bool
}

// drawtext renders a subtitle or caption layer. Text comes from a file so
// no escaping of the script is needed.
func drawtext(sc config.SubtitlesConfig, o textOverlay) string {
	var opts []string
	if sc.Font != "" {
		if _, err := os.Stat(sc.Font); err == nil {
			opts = append(opts, "fontfile='"+media.EscapeFilterPath(sc.Font)+"'")
		}
	}
	opts = append(opts,
		"textfile='"+media.EscapeFilterPath(o.TextFile)+"'",
		fmt.Sprintf("fontsize=%d", sc.FontSize),
		"fontcolor="+sc.Color,
		fmt.Sprintf("borderw=%d", sc.StrokeWidth),
		"bordercolor="+sc.StrokeColor,
		"line_spacing=12",
		"x=(w-text_w)/2",
		"y="+textY(sc),
	)
	if !o.Always {
		s, e := media.Seconds(o.Start), media.Seconds(o.End)
		opts = append(opts, fmt.Sprintf("enable='between(t,%s,%s)'", s, e))
		if f := sc.FadeSec; f > 0 && o.End-o.Start > 2*f {
			fs := media.Seconds(f)
			opts = append(opts, fmt.Sprintf(
				"alpha='if(lt(t,%s+%s),(t-%s)/%s,if(gt(t,%s-%s),(%s-t)/%s,1))'",
				s, fs, s, fs, e, fs, e, fs,
			))
		}
	}
	return "drawtext=" + strings.Join(opts, ":")
}

func textY(sc config.SubtitlesConfig) string {
	if sc.Position == "center" {
		return "(h-text_h)/2"
	}
	ratio := sc.YRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.76
	}
	// top edge of the text block sits at the ratio, like a lower third
	return fmt.Sprintf("trunc(h*%g)", ratio)
}

// wrapText breaks text on spaces so no line runs past maxRunes
func wrapText(text string, maxRunes int) string {
	words := strings.Fields(text)
	if len(words) == 0 || maxRunes <= 0 {
		return strings.TrimSpace(text)
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > maxRunes {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

// maxRunesPerLine estimates how many glyphs fit in 80% of the frame width
func maxRunesPerLine(width, fontSize int) int {
	if fontSize <= 0 {
		return 0
	}
	n := int(float64(width) * 0.8 / (float64(fontSize) * 0.5))
	if n < 8 {
		n = 8
	}
	return n
}

// writeTextFile stores overlay text for drawtext's textfile option
func writeTextFile(dir, name, text string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// watermarkFilter scales the logo and gives it a translucent black margin
func watermarkFilter(rc config.RenderConfig, wc config.WatermarkConfig) string {
	logoW := int(float64(rc.Width)*wc.WidthRatio) / 2 * 2
	if logoW < 2 {
		logoW = 2
	}
	return fmt.Sprintf(
		"scale=%d:-1,format=rgba,pad=iw+%d:ih+%d:%d:%d:color=black@%g",
		logoW,
		wc.MarginLeft+wc.MarginRight, wc.MarginTop+wc.MarginBottom,
		wc.MarginLeft, wc.MarginTop,
		wc.BackingOpacity,
	)
}

// watermarkText is the drawtext fallback when no logo file is present
func watermarkText(wc config.WatermarkConfig, font string) string {
	var opts []string
	if font != "" {
		if _, err := os.Stat(font); err == nil {
			opts = append(opts, "fontfile='"+media.EscapeFilterPath(font)+"'")
		}
	}
	opts = append(opts,
		"text='"+media.EscapeText(wc.Text)+"'",
		fmt.Sprintf("fontsize=%d", wc.FontSize),
		"fontcolor=white",
		"box=1",
		fmt.Sprintf("boxcolor=black@%g", wc.BackingOpacity),
		"boxborderw=12",
		fmt.Sprintf("x=w-text_w-%d", wc.MarginRight),
		fmt.Sprintf("y=h-text_h-%d", wc.MarginBottom),
	)
	return "drawtext=" + strings.Join(opts, ":")
}

// audioChain fades the narration and, when music is present, mixes in the
// looped quiet music bed. Output label is [a].
func audioChain(rc config.RenderConfig, mc config.MusicConfig, musicInput int, duration float64) string {
	d := media.Seconds(duration)
	voice := "[1:a]aresample=44100"
	if f := rc.VoiceFadeSec; f > 0 && duration > 2*f {
		voice += fmt.Sprintf(",afade=t=in:st=0:d=%s,afade=t=out:st=%s:d=%s",
			media.Seconds(f), media.Seconds(duration-f), media.Seconds(f))
	}
	if musicInput < 0 {
		return voice + "[a]"
	}

	music := fmt.Sprintf("[%d:a]aresample=44100,volume=%g,atrim=0:%s,asetpts=PTS-STARTPTS", musicInput, mc.Volume, d)
	if f := mc.FadeSec; f > 0 && duration > 2*f {
		music += fmt.Sprintf(",afade=t=in:st=0:d=%s,afade=t=out:st=%s:d=%s",
			media.Seconds(f), media.Seconds(duration-f), media.Seconds(f))
	}
	return voice + "[voice];" + music + "[music];" +
		"[voice][music]amix=inputs=2:duration=first:dropout_transition=0:normalize=0[a]"
}

// chainVideo appends filters to the running video label and returns the new label
func chainVideo(parts *[]string, in string, step int, filter string) string {
	out := fmt.Sprintf("v%d", step)
	*parts = append(*parts, fmt.Sprintf("[%s]%s[%s]", in, filter, out))
	return out
}

// layerLabel shortens text for the layer list
func layerLabel(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	r := []rune(text)
	if len(r) > 40 {
		return string(r[:40]) + "..."
	}
	return text
}

func subtitleLayers(segments []types.SubtitleSegment, duration float64) []types.Layer {
	var layers []types.Layer
	for _, s := range segments {
		end := s.End
		if end > duration {
			end = duration
		}
		if s.Start >= end {
			continue
		}
		layers = append(layers, types.Layer{Kind: types.LayerSubtitle, Label: layerLabel(s.Text), Start: s.Start, End: end})
	}
	return layers
}
