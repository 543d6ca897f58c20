/*
stats.go - Per-technician performance figures

PURPOSE:
  The workspace dashboard shows how many requests each technician has
  fulfilled and how quickly. Turnaround is submitted-to-completed,
  averaged in hours with decimal precision so a queue of five-minute
  tasks doesn't round to zero.
*/
package workflow

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// TechnicianStats summarizes one technician's completed work.
type TechnicianStats struct {
	Technician      string
	Completed       int
	AvgTurnaroundHr decimal.Decimal
}

// Stats aggregates completed tasks per technician, sorted by technician
// id. Tasks missing either timestamp are counted but excluded from the
// average.
func (s *Service) Stats(ctx context.Context) ([]TechnicianStats, error) {
	done, err := s.Tasks.Archive(ctx, "")
	if err != nil {
		return nil, err
	}

	type acc struct {
		completed int
		hours     decimal.Decimal
		timed     int
	}
	byTech := make(map[string]*acc)

	for _, t := range done {
		tech := string(t.AssignedTo)
		if tech == "" {
			continue
		}
		a := byTech[tech]
		if a == nil {
			a = &acc{}
			byTech[tech] = a
		}
		a.completed++
		if !t.SubmittedAt.IsZero() && !t.CompletedAt.IsZero() && t.CompletedAt.After(t.SubmittedAt) {
			seconds := decimal.NewFromInt(int64(t.CompletedAt.Sub(t.SubmittedAt).Seconds()))
			a.hours = a.hours.Add(seconds.Div(decimal.NewFromInt(3600)))
			a.timed++
		}
	}

	out := make([]TechnicianStats, 0, len(byTech))
	for tech, a := range byTech {
		st := TechnicianStats{Technician: tech, Completed: a.completed}
		if a.timed > 0 {
			st.AvgTurnaroundHr = a.hours.Div(decimal.NewFromInt(int64(a.timed))).Round(2)
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Technician < out[j].Technician })
	return out, nil
}
