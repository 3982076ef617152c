package cli

import (
	"fmt"
	"io"
	"strings"
)

func promptYesNoIO(in io.Reader, out io.Writer, message string) bool {
	if out != nil {
		fmt.Fprint(out, message)
	}
	text, err := readPromptLine(in)
	if err != nil && text == "" {
		return false
	}
	text = strings.TrimSpace(strings.ToLower(text))
	return text == "y" || text == "yes"
}

// promptLine prints message and returns one trimmed line.
func promptLine(in io.Reader, out io.Writer, message string) (string, error) {
	fmt.Fprint(out, message)
	text, err := readPromptLine(in)
	if err != nil && text == "" {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// readPromptLine reads until either LF or CR so Enter works in normal and
// raw terminal modes. It reads one byte at a time so nothing past the line
// is consumed.
func readPromptLine(in io.Reader) (string, error) {
	if in == nil {
		return "", io.EOF
	}

	var buf []byte
	var one [1]byte
	for {
		n, err := in.Read(one[:])
		if n > 0 {
			switch one[0] {
			case '\n', '\r':
				return string(buf), nil
			default:
				buf = append(buf, one[0])
			}
		}
		if err != nil {
			if err == io.EOF && len(buf) > 0 {
				return string(buf), nil
			}
			return string(buf), err
		}
	}
}
