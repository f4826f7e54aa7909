package alerts

import "context"

// Stats summarizes the current in-memory alert set and observer registry.
type Stats struct {
	TotalAlerts    int              `json:"total_alerts"`
	TotalObservers int              `json:"total_observers"`
	ByStatus       map[Status]int   `json:"by_status"`
	ByType         map[Type]int     `json:"by_type"`
	BySeverity     map[Severity]int `json:"by_severity"`
}

// Stats computes totals and the status/type/severity breakdowns from the
// current alert set.
func (d *Dispatcher) Stats(ctx context.Context) (Stats, error) {
	stored, err := d.storage.FindAll(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TotalAlerts: len(stored),
		ByStatus:    make(map[Status]int),
		ByType:      make(map[Type]int),
		BySeverity:  make(map[Severity]int),
	}
	for _, alert := range stored {
		stats.ByStatus[alert.Status]++
		stats.ByType[alert.Type]++
		stats.BySeverity[alert.Severity]++
	}

	d.obsMu.RLock()
	stats.TotalObservers = len(d.observers)
	d.obsMu.RUnlock()

	return stats, nil
}
