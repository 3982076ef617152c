package media

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Input names the files backing one clip. An empty Audio path is filled
// with generated silence.
type Input struct {
	Image string
	Audio string
}

// FilterGraph builds the filter_complex string for clips whose inputs are
// ordered image, audio, image, audio, ...
func FilterGraph(clips []Clip) string {
	var b strings.Builder
	for i, c := range clips {
		dur := seconds(c.Duration)
		fmt.Fprintf(&b, "[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=30,trim=duration=%s,setpts=PTS-STARTPTS[v%d];",
			2*i, FrameWidth, FrameHeight, FrameWidth, FrameHeight, dur, i)
		fmt.Fprintf(&b, "[%d:a]atrim=duration=%s,asetpts=PTS-STARTPTS[a%d];", 2*i+1, dur, i)
	}
	for i := range clips {
		fmt.Fprintf(&b, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[outv][outa]", len(clips))
	return b.String()
}

// FFmpegArgs returns the encoder argument list writing output as MP4.
func FFmpegArgs(clips []Clip, inputs []Input, output string) ([]string, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("no clips to encode")
	}
	if len(clips) != len(inputs) {
		return nil, fmt.Errorf("%d clips but %d inputs", len(clips), len(inputs))
	}

	args := []string{"-y"}
	for i, c := range clips {
		in := inputs[i]
		if in.Image == "" {
			return nil, fmt.Errorf("clip %d has no image", i)
		}
		dur := seconds(c.Duration)
		args = append(args, "-loop", "1", "-t", dur, "-i", in.Image)
		if in.Audio != "" {
			args = append(args, "-i", in.Audio)
		} else {
			args = append(args, "-f", "lavfi", "-t", dur, "-i",
				fmt.Sprintf("anullsrc=r=%d:cl=mono", c.SampleRate))
		}
	}
	args = append(args,
		"-filter_complex", FilterGraph(clips),
		"-map", "[outv]", "-map", "[outa]",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-c:a", "aac",
		output,
	)
	return args, nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
