package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planpilot/internal/audio"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/llm"
	"github.com/alexanderramin/planpilot/internal/media"
)

// FormatHistory lists entries newest first, truncating long text.
func FormatHistory(entries []*domain.HistoryEntry, now time.Time) string {
	if len(entries) == 0 {
		return Dim("No history.") + "\n"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			StyleBlue.Render(string(e.Feature)),
			TruncateText(oneLine(e.Input), 36),
			TruncateText(oneLine(e.Output), 36),
			RelativeTime(e.CreatedAt, now),
		})
	}
	return RenderTable([]string{"FEATURE", "INPUT", "OUTPUT", "WHEN"}, rows)
}

// FormatSettings shows the provider selection with the key masked.
func FormatSettings(s *domain.UserSettings) string {
	key := s.MaskedKey()
	if key == "" {
		key = Dim("(from environment)")
	}
	model := s.Model
	if model == "" {
		model = Dim("(provider default)")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Dim("Provider:"), s.Provider)
	fmt.Fprintf(&b, "%s %s\n", Dim("Model:   "), model)
	fmt.Fprintf(&b, "%s %s\n", Dim("Language:"), s.Language)
	fmt.Fprintf(&b, "%s %s\n", Dim("API key: "), key)
	return b.String()
}

// FormatModels lists models, marking the selected one.
func FormatModels(list llm.ModelList, selected string) string {
	var b strings.Builder
	title := fmt.Sprintf("%s models", list.Provider)
	if list.Fallback {
		title += " (built-in list)"
	}
	b.WriteString(Header(title))
	b.WriteString("\n")
	for _, m := range list.Models {
		if m == selected {
			fmt.Fprintf(&b, "%s %s\n", StyleGreen.Render("●"), m)
			continue
		}
		fmt.Fprintf(&b, "  %s\n", m)
	}
	return b.String()
}

// FormatWAVInfo describes a WAV header and its payload length.
func FormatWAVInfo(f audio.Format, dataLen uint32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d Hz\n", Dim("Sample rate:"), f.SampleRate)
	fmt.Fprintf(&b, "%s %d\n", Dim("Channels:   "), f.Channels)
	fmt.Fprintf(&b, "%s %d\n", Dim("Bits:       "), f.BitsPerSample)
	fmt.Fprintf(&b, "%s %d bytes\n", Dim("Data:       "), dataLen)
	fmt.Fprintf(&b, "%s %s\n", Dim("Duration:   "), audio.Duration(int(dataLen), f).Round(time.Millisecond))
	return b.String()
}

// FormatClips renders the scene timeline of a video.
func FormatClips(clips []media.Clip) string {
	rows := make([][]string, 0, len(clips))
	for _, c := range clips {
		narration := StyleGreen.Render("yes")
		if !c.HasAudio {
			narration = Dim("no")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.Index+1),
			TruncateText(c.Title, 40),
			c.Start.Round(time.Millisecond).String(),
			c.Duration.Round(time.Millisecond).String(),
			narration,
		})
	}
	out := Table{
		Headers: []string{"#", "SCENE", "START", "LENGTH", "AUDIO"},
		Rows:    rows,
		Right:   map[int]bool{0: true, 2: true, 3: true},
	}.Render()
	return out + Dim("Total: "+media.TotalDuration(clips).Round(time.Millisecond).String()) + "\n"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
