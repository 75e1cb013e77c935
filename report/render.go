package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Render writes each report as a table of spies followed by a table of
// their recorded calls.
func Render(w io.Writer, reports ...Report) error {
	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, "%s\n%s", heading(r), renderSpies(r)); err != nil {
			return err
		}

		if r.Calls() > 0 {
			if _, err := fmt.Fprintf(w, "\n%s", renderCalls(r)); err != nil {
				return err
			}
		}
	}

	return nil
}

func heading(r Report) string {
	label := r.Label
	if label == "" {
		label = "(unlabeled)"
	}

	return fmt.Sprintf("Report %s (%s)", label, r.CreatedAt.Format("2006-01-02 15:04:05"))
}

func renderSpies(r Report) string {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Kind", "Target", "Name", "Hooked", "Policy", "Calls"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, s := range r.Spies {
		policy := s.Policy
		if s.Value != "" {
			policy = "value " + s.Value
		}

		table.Append([]string{s.Kind, s.Target, s.Name, strconv.FormatBool(s.Hooked), policy, strconv.Itoa(len(s.Calls))})
	}

	table.SetFooter([]string{"", "", fmt.Sprintf("Total Spies %d", len(r.Spies)), "", "", strconv.Itoa(r.Calls())})
	table.Render()

	return buffer.String()
}

func renderCalls(r Report) string {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Spy", "#", "Args", "Results", "Error"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, s := range r.Spies {
		for i, c := range s.Calls {
			outcome := c.Error
			if c.Panic != "" {
				outcome = "panic " + c.Panic
			}

			table.Append([]string{
				s.Target + "." + s.Name,
				strconv.Itoa(i + 1),
				strings.Join(c.Args, ", "),
				strings.Join(c.Results, ", "),
				outcome,
			})
		}
	}

	table.Render()

	return buffer.String()
}
