package media

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/planpilot/internal/audio"
)

// ScriptName is the markdown narration file inside a bundle.
const ScriptName = "script.md"

// AssetNames returns the bundle file names of scene i.
func AssetNames(i int) (image, wav string) {
	return fmt.Sprintf("scene_%02d.png", i+1), fmt.Sprintf("scene_%02d.wav", i+1)
}

// WriteBundle writes a ZIP of every scene's PNG and WAV plus a markdown
// script with timings.
func WriteBundle(w io.Writer, scenes []Scene, f audio.Format) error {
	zw := zip.NewWriter(w)
	clips := BuildTimeline(scenes, f)

	for i, s := range scenes {
		imageName, wavName := AssetNames(i)
		if len(s.Image) > 0 {
			if err := writeEntry(zw, imageName, s.Image); err != nil {
				return err
			}
		}
		if len(s.AudioPCM) > 0 {
			if err := writeEntry(zw, wavName, audio.EncodeWAV(s.AudioPCM, f)); err != nil {
				return err
			}
		}
	}
	if err := writeEntry(zw, ScriptName, []byte(Script(scenes, clips))); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close bundle: %w", err)
	}
	return nil
}

// Script renders the narration of every scene as markdown.
func Script(scenes []Scene, clips []Clip) string {
	var b strings.Builder
	b.WriteString("# Video script\n")
	for i, s := range scenes {
		fmt.Fprintf(&b, "\n## %d. %s\n\n", i+1, s.Title)
		if i < len(clips) {
			fmt.Fprintf(&b, "_%s - %s_\n\n", clips[i].Start, clips[i].Start+clips[i].Duration)
		}
		if s.Narration != "" {
			b.WriteString(strings.TrimSpace(s.Narration))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
