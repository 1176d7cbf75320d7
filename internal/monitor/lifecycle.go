package monitor

import "time"

// MaintenanceInterval is how often the result store is compacted.
const MaintenanceInterval = time.Hour

// maintenanceWorker runs housekeeping once on start and then hourly.
func (m *Monitor) maintenanceWorker() {
	defer m.wg.Done()

	ticker := time.NewTicker(MaintenanceInterval)
	defer ticker.Stop()

	m.performMaintenance()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.performMaintenance()
		}
	}
}

func (m *Monitor) performMaintenance() {
	m.log.Debug("running maintenance")

	if err := m.maint.AggregateHourlyPatterns(); err != nil {
		m.log.Error("failed to aggregate hourly patterns", "error", err)
	}

	// Raw results are kept for 7 days, hourly aggregates for 90.
	if err := m.maint.ArchiveOldData(); err != nil {
		m.log.Error("failed to archive old data", "error", err)
	}
}
