package media

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/planpilot/internal/audio"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTimeline(t *testing.T) {
	scenes := []Scene{
		{Title: "Intro", AudioPCM: make([]byte, 48000*2)}, // 2s at 24kHz mono
		{Title: "Silent"},
		{Title: "Outro", AudioPCM: make([]byte, 24000)},
	}
	clips := BuildTimeline(scenes, audio.DefaultFormat)
	require.Len(t, clips, 3)

	assert.Equal(t, 2*time.Second, clips[0].Duration)
	assert.True(t, clips[0].HasAudio)
	assert.Equal(t, MinSceneDuration, clips[1].Duration)
	assert.False(t, clips[1].HasAudio)
	assert.Equal(t, 2*time.Second, clips[1].Start)
	assert.Equal(t, 5*time.Second, clips[2].Start)
	assert.Equal(t, 500*time.Millisecond, clips[2].Duration)
	assert.Equal(t, 5500*time.Millisecond, TotalDuration(clips))
	assert.Equal(t, time.Duration(0), TotalDuration(nil))
}

func TestFilterGraph(t *testing.T) {
	clips := []Clip{{Duration: 2 * time.Second}, {Duration: 1500 * time.Millisecond}}
	graph := FilterGraph(clips)

	assert.Contains(t, graph, "[0:v]scale=1280:720")
	assert.Contains(t, graph, "trim=duration=2.000,setpts=PTS-STARTPTS[v0];")
	assert.Contains(t, graph, "[1:a]atrim=duration=2.000")
	assert.Contains(t, graph, "[2:v]scale=1280:720")
	assert.Contains(t, graph, "[3:a]atrim=duration=1.500")
	assert.True(t, strings.HasSuffix(graph, "[v0][a0][v1][a1]concat=n=2:v=1:a=1[outv][outa]"))
}

func TestFFmpegArgs(t *testing.T) {
	clips := BuildTimeline([]Scene{{Title: "a", AudioPCM: make([]byte, 48000)}, {Title: "b"}}, audio.DefaultFormat)
	args, err := FFmpegArgs(clips, []Input{{Image: "a.png", Audio: "a.wav"}, {Image: "b.png"}}, "out.mp4")
	require.NoError(t, err)

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-loop 1 -t 1.000 -i a.png -i a.wav")
	assert.Contains(t, joined, "-loop 1 -t 3.000 -i b.png -f lavfi -t 3.000 -i anullsrc=r=24000:cl=mono")
	assert.Equal(t, "out.mp4", args[len(args)-1])

	_, err = FFmpegArgs(clips, []Input{{Image: "a.png"}}, "out.mp4")
	assert.Error(t, err)
	_, err = FFmpegArgs(nil, nil, "out.mp4")
	assert.Error(t, err)
	_, err = FFmpegArgs(clips[:1], []Input{{}}, "out.mp4")
	assert.Error(t, err)
}

func TestWriteBundle(t *testing.T) {
	scenes := []Scene{
		{Title: "Kickoff", Narration: "Welcome to the plan.", Image: []byte("\x89PNG fake"), AudioPCM: []byte{1, 0, 2, 0}},
		{Title: "Budget", Narration: "Costs stay within reserve."},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteBundle(&buf, scenes, audio.DefaultFormat))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	files := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		files[f.Name] = data
	}

	assert.Len(t, files, 3)
	assert.Equal(t, []byte("\x89PNG fake"), files["scene_01.png"])

	format, size, err := audio.ParseWAVHeader(files["scene_01.wav"])
	require.NoError(t, err)
	assert.Equal(t, audio.DefaultFormat, format)
	assert.Equal(t, uint32(4), size)

	script := string(files[ScriptName])
	assert.Contains(t, script, "## 1. Kickoff")
	assert.Contains(t, script, "## 2. Budget")
	assert.Contains(t, script, "Costs stay within reserve.")
}

func TestScenesFromProject(t *testing.T) {
	p := &domain.Project{
		Name:      "Library",
		Objective: "Open a community library",
		Plan: &domain.ProjectPlan{Phases: []domain.Phase{
			{Name: "Design", Description: "Floor plan", Deliverables: []string{"Drawings"}},
		}},
		KPIReport:      &domain.KPIReport{Narrative: "On track."},
		ConsultingPlan: &domain.ConsultingPlan{Sections: []domain.ConsultingSection{{Title: "Staffing", Content: "Hire two."}}},
	}
	scenes := ScenesFromProject(p)
	require.Len(t, scenes, 4)
	assert.Equal(t, "Library", scenes[0].Title)
	assert.Equal(t, "Floor plan\n- Drawings", scenes[1].Narration)
	assert.Equal(t, "Project health", scenes[2].Title)
	assert.Equal(t, "Staffing", scenes[3].Title)
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	pcm := []byte{1, 0, 2, 0, 3, 0}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.png"), []byte("img"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.wav"), audio.EncodeWAV(pcm, audio.DefaultFormat), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.b64"), []byte(audio.EncodeBase64(pcm)+"\n"), 0o644))
	manifest := `sample_rate: 16000
scenes:
  - title: One
    narration: First
    image: one.png
    audio: one.wav
  - title: Two
    audio: two.b64
`
	path := filepath.Join(dir, "video.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 16000, m.Format().SampleRate)

	scenes, err := m.LoadScenes(dir)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, []byte("img"), scenes[0].Image)
	assert.Equal(t, pcm, scenes[0].AudioPCM)
	assert.Equal(t, pcm, scenes[1].AudioPCM)

	inputs := m.Inputs(dir)
	assert.Equal(t, filepath.Join(dir, "one.png"), inputs[0].Image)
	assert.Equal(t, "", inputs[1].Image)
}

func TestLoadManifest_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenes: []\n"), 0o644))
	_, err := LoadManifest(path)
	assert.Error(t, err)
}
