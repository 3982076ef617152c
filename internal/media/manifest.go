package media

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/planpilot/internal/audio"
)

// Manifest is the YAML description of a video: scene titles, narration
// text and paths to the image and audio of each scene.
type Manifest struct {
	SampleRate int             `yaml:"sample_rate"`
	Scenes     []ManifestScene `yaml:"scenes"`
}

type ManifestScene struct {
	Title     string `yaml:"title"`
	Narration string `yaml:"narration"`
	Image     string `yaml:"image"`
	// Audio is a WAV file or a text file holding base64 PCM16.
	Audio string `yaml:"audio"`
}

// Format is the PCM format audio files are assumed to carry.
func (m Manifest) Format() audio.Format {
	f := audio.DefaultFormat
	if m.SampleRate > 0 {
		f.SampleRate = m.SampleRate
	}
	return f
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(m.Scenes) == 0 {
		return Manifest{}, fmt.Errorf("manifest %s has no scenes", path)
	}
	return m, nil
}

// Inputs resolves the encoder inputs of each scene relative to dir.
func (m Manifest) Inputs(dir string) []Input {
	out := make([]Input, len(m.Scenes))
	for i, s := range m.Scenes {
		out[i] = Input{Image: resolve(dir, s.Image), Audio: resolve(dir, s.Audio)}
	}
	return out
}

// LoadScenes reads every referenced asset, relative to dir.
func (m Manifest) LoadScenes(dir string) ([]Scene, error) {
	scenes := make([]Scene, len(m.Scenes))
	for i, s := range m.Scenes {
		scene := Scene{Title: s.Title, Narration: s.Narration}
		if s.Image != "" {
			img, err := os.ReadFile(resolve(dir, s.Image))
			if err != nil {
				return nil, fmt.Errorf("scene %d image: %w", i+1, err)
			}
			scene.Image = img
		}
		if s.Audio != "" {
			pcm, err := readPCM(resolve(dir, s.Audio))
			if err != nil {
				return nil, fmt.Errorf("scene %d audio: %w", i+1, err)
			}
			scene.AudioPCM = pcm
		}
		scenes[i] = scene
	}
	return scenes, nil
}

func readPCM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".wav" {
		_, pcm, err := audio.DecodeWAV(data)
		return pcm, err
	}
	return audio.DecodeBase64PCM16(string(data))
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
