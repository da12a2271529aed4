package project

import "math"

// ComputeStats derives collection statistics. Rates are rounded integer
// percentages and are 0 for an empty collection.
func ComputeStats(projects []Project) Stats {
	var st Stats
	st.Total = len(projects)
	for _, p := range projects {
		if p.IsCompleted {
			st.Completed++
		}
		if p.WorkStatus == StatusInProgress {
			st.InProgress++
		}
		if p.IsPaid {
			st.Paid++
			st.TotalRevenue += p.Price
		} else {
			st.Unpaid++
			st.PendingRevenue += p.Price
		}
	}
	if st.Total > 0 {
		st.CompletionRate = percent(st.Completed, st.Total)
		st.PaymentRate = percent(st.Paid, st.Total)
	}
	return st
}

func percent(n, total int) int {
	return int(math.Round(float64(n) / float64(total) * 100))
}
