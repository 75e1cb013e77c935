package report

import "time"

func sampleReports() []Report {
	created := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

	return []Report{
		{
			Version:   CurrentVersion,
			Label:     "first",
			CreatedAt: created,
			Spies: []Spy{
				{
					Kind: "subroutine", Target: "*app.Greeter", Name: "Greet", Hooked: true, Policy: "return [yo]",
					Calls: []Call{{Args: []string{`"bob"`}, Results: []string{`"yo"`}}},
				},
				{Kind: "constant", Target: "*app.Limits", Name: "LIMIT", Value: "5"},
			},
		},
		{
			Version:   CurrentVersion,
			Label:     "second",
			CreatedAt: created.Add(time.Second),
			Spies: []Spy{
				{
					Kind: "subroutine", Target: "*app.Store", Name: "Open", Hooked: true, Policy: "raise boom",
					Calls: []Call{
						{Args: []string{`"db"`}, Results: []string{`""`, `error("boom")`}, Error: "boom"},
						{Args: []string{`"x"`}, Panic: `"kaput"`},
					},
				},
			},
		},
	}
}

// normalized drops the location decoders attach to timestamps.
func normalized(reports []Report) []Report {
	out := make([]Report, len(reports))
	for i, r := range reports {
		r.CreatedAt = r.CreatedAt.UTC()
		out[i] = r
	}

	return out
}
