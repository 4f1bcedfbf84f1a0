package report

import (
	"fmt"
	"os"
	"strings"
)

var outputEscaper = strings.NewReplacer("%", "%25", "\n", "%0A", "\r", "%0D")

// WriteGitHubOutput appends key=value to a GitHub Actions output file,
// escaping the value onto a single line.
func WriteGitHubOutput(path, key, value string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("report: open github output: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s=%s\n", key, outputEscaper.Replace(value)); err != nil {
		f.Close()
		return fmt.Errorf("report: write github output: %w", err)
	}
	return f.Close()
}
