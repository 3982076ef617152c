package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/planpilot/internal/audio"
	"github.com/alexanderramin/planpilot/internal/cli/formatter"
)

func newAudioCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Convert speech audio between base64 PCM and WAV",
	}

	cmd.AddCommand(
		newAudioWAVCmd(app),
		newAudioInspectCmd(app),
	)

	return cmd
}

func newAudioWAVCmd(app *App) *cobra.Command {
	var (
		in, out string
		f       = audio.DefaultFormat
	)

	cmd := &cobra.Command{
		Use:   "wav",
		Short: "Wrap base64 PCM16 (as returned by speech synthesis) in a WAV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			pcm, err := audio.DecodeBase64PCM16(string(data))
			if err != nil {
				return err
			}
			wav := audio.EncodeWAV(pcm, f)

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(wav)
				return err
			}
			if err := os.WriteFile(out, wav, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			app.logger().Debug("wav_written", "path", out, "bytes", len(wav))
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%s)\n", out, audio.Duration(len(pcm), f))
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&in, "in", "i", "-", "Base64 PCM input file (- for stdin)")
	fl.StringVarP(&out, "out", "o", "", "WAV output file (default stdout)")
	fl.IntVar(&f.SampleRate, "rate", f.SampleRate, "Sample rate in Hz")
	fl.IntVar(&f.Channels, "channels", f.Channels, "Channel count")
	fl.IntVar(&f.BitsPerSample, "bits", f.BitsPerSample, "Bits per sample")

	return cmd
}

func newAudioInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the format of a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			f, size, err := audio.ParseWAVHeader(data)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWAVInfo(f, size))
			return nil
		},
	}
}
