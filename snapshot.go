package spy

import (
	"fmt"
	"strings"

	"github.com/berkcaputcu/spy/report"
)

// Snapshot describes every interception the agency tracks, with the call
// logs recorded so far.
func (a *Agency) Snapshot(label string) report.Report {
	r := report.New(label)

	for _, s := range a.Subroutines() {
		r.Spies = append(r.Spies, s.record())
	}

	for _, c := range a.Constants() {
		r.Spies = append(r.Spies, c.record())
	}

	for _, d := range a.Doubles() {
		r.Spies = append(r.Spies, report.Spy{
			Kind:   KindDouble.String(),
			Target: d.String(),
			Hooked: true,
			Value:  strings.Join(d.Members(), ","),
		})
	}

	return r
}

// Snapshot describes the Default agency.
func Snapshot(label string) report.Report {
	return Default().Snapshot(label)
}

// Record appends a snapshot of the agency to j.
func (a *Agency) Record(j report.Journal, label string) error {
	if err := j.Append(a.Snapshot(label)); err != nil {
		return fmt.Errorf("failed to record snapshot %q: %w", label, err)
	}

	return nil
}

func (s *Subroutine) record() report.Spy {
	rec := report.Spy{
		Kind:   KindSubroutine.String(),
		Target: describeTarget(s.target),
		Name:   s.name,
		Hooked: s.Hooked(),
		Policy: s.Policy(),
	}

	for _, c := range s.Calls() {
		call := report.Call{
			Args:    report.FormatValues(c.Args),
			Results: report.FormatValues(c.Results),
		}

		if c.Err != nil {
			call.Error = c.Err.Error()
		}

		if c.Panic != nil {
			call.Error = ""
			call.Panic = report.FormatValue(c.Panic)
		}

		rec.Calls = append(rec.Calls, call)
	}

	return rec
}

func (c *Constant) record() report.Spy {
	return report.Spy{
		Kind:   KindConstant.String(),
		Target: describeTarget(c.namespace),
		Name:   c.name,
		Hooked: c.Hooked(),
		Value:  report.FormatValue(c.Value()),
	}
}
