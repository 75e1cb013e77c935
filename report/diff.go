package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// Transcript renders reports as stable text: one line per spy and per
// call, without timestamps, so two runs can be compared line by line.
func Transcript(reports ...Report) string {
	var b strings.Builder

	for _, r := range reports {
		fmt.Fprintf(&b, "report %s\n", r.Label)

		for _, s := range r.Spies {
			fmt.Fprintf(&b, "  %s %s.%s hooked=%t", s.Kind, s.Target, s.Name, s.Hooked)

			if s.Policy != "" {
				fmt.Fprintf(&b, " policy=%q", s.Policy)
			}

			if s.Value != "" {
				fmt.Fprintf(&b, " value=%s", s.Value)
			}

			b.WriteString("\n")

			for i, c := range s.Calls {
				fmt.Fprintf(&b, "    call %d (%s)", i+1, strings.Join(c.Args, ", "))

				if len(c.Results) > 0 {
					fmt.Fprintf(&b, " -> %s", strings.Join(c.Results, ", "))
				}

				if c.Error != "" {
					fmt.Fprintf(&b, " error=%s", c.Error)
				}

				if c.Panic != "" {
					fmt.Fprintf(&b, " panic=%s", c.Panic)
				}

				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// Diff returns a unified diff of the transcripts of a and b, empty when
// they record the same interceptions and calls.
func Diff(a, b []Report, fromName, toName string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(Transcript(a...)),
		B:        difflib.SplitLines(Transcript(b...)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to diff reports: %w", err)
	}

	return text, nil
}

var (
	addedColor   = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed)
	hunkColor    = color.New(color.FgCyan)
	fileColor    = color.New(color.Bold)
)

// Colorize colors the lines of a unified diff.
func Colorize(diff string) string {
	lines := strings.SplitAfter(diff, "\n")

	var b strings.Builder

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(fileColor.Sprint(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(hunkColor.Sprint(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(addedColor.Sprint(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(removedColor.Sprint(line))
		default:
			b.WriteString(line)
		}
	}

	return b.String()
}
