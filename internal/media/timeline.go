// Package media plans infographic videos: per-scene image and narration
// assets laid out on a timeline and handed to an external encoder.
package media

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planpilot/internal/audio"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// MinSceneDuration applies to scenes without narration audio.
const MinSceneDuration = 3 * time.Second

const (
	FrameWidth  = 1280
	FrameHeight = 720
)

// Scene is one slide of a video: an image shown while narration plays.
type Scene struct {
	Title     string
	Narration string
	Image     []byte
	AudioPCM  []byte
}

// Clip is a scene placed on the output timeline.
type Clip struct {
	Index      int
	Title      string
	Start      time.Duration
	Duration   time.Duration
	HasAudio   bool
	SampleRate int
}

// BuildTimeline places scenes back to back. A scene lasts as long as its
// narration, or MinSceneDuration when it has none.
func BuildTimeline(scenes []Scene, f audio.Format) []Clip {
	if f.SampleRate <= 0 {
		f.SampleRate = audio.DefaultFormat.SampleRate
	}
	clips := make([]Clip, len(scenes))
	var at time.Duration
	for i, s := range scenes {
		dur := audio.Duration(len(s.AudioPCM), f)
		hasAudio := dur > 0
		if !hasAudio {
			dur = MinSceneDuration
		}
		clips[i] = Clip{
			Index:      i,
			Title:      s.Title,
			Start:      at,
			Duration:   dur,
			HasAudio:   hasAudio,
			SampleRate: f.SampleRate,
		}
		at += dur
	}
	return clips
}

// TotalDuration is the end of the last clip.
func TotalDuration(clips []Clip) time.Duration {
	if len(clips) == 0 {
		return 0
	}
	last := clips[len(clips)-1]
	return last.Start + last.Duration
}

// ScenesFromProject derives text-only scenes from a project's generated
// artifacts: a title card, the plan phases and the KPI narrative.
func ScenesFromProject(p *domain.Project) []Scene {
	scenes := []Scene{{Title: p.DisplayName(), Narration: p.Objective}}
	if p.Plan != nil {
		for _, ph := range p.Plan.Phases {
			var b strings.Builder
			b.WriteString(ph.Description)
			for _, d := range ph.Deliverables {
				fmt.Fprintf(&b, "\n- %s", d)
			}
			scenes = append(scenes, Scene{Title: ph.Name, Narration: strings.TrimSpace(b.String())})
		}
	}
	if p.KPIReport != nil && p.KPIReport.Narrative != "" {
		scenes = append(scenes, Scene{Title: "Project health", Narration: p.KPIReport.Narrative})
	}
	if p.ConsultingPlan != nil {
		for _, sec := range p.ConsultingPlan.Sections {
			scenes = append(scenes, Scene{Title: sec.Title, Narration: sec.Content})
		}
	}
	return scenes
}
