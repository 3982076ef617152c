package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/audio"
	"github.com/alexanderramin/planpilot/internal/cli/formatter"
	"github.com/alexanderramin/planpilot/internal/media"
)

func newVideoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video",
		Short: "Lay out presentation videos from scene manifests or projects",
	}

	cmd.AddCommand(
		newVideoPlanCmd(app),
		newVideoBundleCmd(app),
	)

	return cmd
}

// videoSource loads scenes from a YAML manifest or a stored project. The
// manifest also yields encoder inputs; project scenes carry text only.
type videoSource struct {
	scenes []media.Scene
	inputs []media.Input
	format audio.Format
}

func loadVideoSource(cmd *cobra.Command, app *App, manifestPath, projectRef string) (*videoSource, error) {
	switch {
	case manifestPath != "" && projectRef != "":
		return nil, fmt.Errorf("use either --manifest or --project, not both")
	case manifestPath != "":
		m, err := media.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		dir := filepath.Dir(manifestPath)
		scenes, err := m.LoadScenes(dir)
		if err != nil {
			return nil, err
		}
		return &videoSource{scenes: scenes, inputs: m.Inputs(dir), format: m.Format()}, nil
	case projectRef != "":
		p, err := findProject(commandContext(cmd), app, projectRef)
		if err != nil {
			return nil, err
		}
		return &videoSource{scenes: media.ScenesFromProject(p), format: audio.DefaultFormat}, nil
	default:
		return nil, fmt.Errorf("a --manifest or --project is required")
	}
}

func newVideoPlanCmd(app *App) *cobra.Command {
	var manifestPath, projectRef, output string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the scene timeline and the ffmpeg command that renders it",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := loadVideoSource(cmd, app, manifestPath, projectRef)
			if err != nil {
				return err
			}
			clips := media.BuildTimeline(src.scenes, src.format)

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatClips(clips))

			if src.inputs == nil {
				fmt.Fprintln(out, formatter.Dim("Project scenes have no images; use `video bundle` for the script."))
				return nil
			}
			ffArgs, err := media.FFmpegArgs(clips, src.inputs, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nffmpeg %s\n", shellJoin(ffArgs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "YAML scene manifest")
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Stored project ID, prefix or name")
	cmd.Flags().StringVarP(&output, "output", "o", "presentation.mp4", "Video file the ffmpeg command writes")

	return cmd
}

func newVideoBundleCmd(app *App) *cobra.Command {
	var manifestPath, projectRef, output string

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Write a ZIP of scene images, narration WAVs and the script",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := loadVideoSource(cmd, app, manifestPath, projectRef)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := media.WriteBundle(f, src.scenes, src.format); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d scene(s)\n", output, len(src.scenes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "YAML scene manifest")
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Stored project ID, prefix or name")
	cmd.Flags().StringVarP(&output, "output", "o", "presentation.zip", "Bundle file")

	return cmd
}

// shellJoin quotes arguments containing shell metacharacters.
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t'\"[];:()=,$&|<>*?") {
			quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
			continue
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}
