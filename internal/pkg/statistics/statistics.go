package statistics

import (
	"encoding/json"
	"log"
	"time"

	"github.com/recoverly/recoverly/app/models"
	"github.com/recoverly/recoverly/internal/pkg/cache"
	"github.com/recoverly/recoverly/internal/pkg/recovery"
)

const (
	cacheKeyDashboard = "statistics:recovery:dashboard"
	cacheExpiration   = 5 * time.Minute
)

// DashboardStats are the aggregate recovery metrics shown on the dashboard.
// Amounts are minor currency units.
type DashboardStats struct {
	TotalLeakage    int64   `json:"total_leakage"`
	RecoveredAmount int64   `json:"recovered_amount"`
	RecoveryRate    float64 `json:"recovery_rate"`
	UnresolvedCount int     `json:"unresolved_count"`
	EmailsSent      int     `json:"emails_sent"`
}

// Compute derives the dashboard metrics from the failed-payment records and
// the recovered-revenue total.
func Compute(records []recovery.FailedPaymentWithRelations, recoveredTotal int64) DashboardStats {
	stats := DashboardStats{RecoveredAmount: recoveredTotal}

	for _, rec := range records {
		stats.TotalLeakage += rec.FailedPayment.Amount
		if rec.FailedPayment.Status == models.FailedPaymentStatusUnresolved {
			stats.UnresolvedCount++
		}
		if len(rec.Attempts) > 0 {
			stats.EmailsSent++
		}
	}

	if stats.TotalLeakage > 0 {
		stats.RecoveryRate = float64(stats.RecoveredAmount) / float64(stats.TotalLeakage) * 100
	}
	return stats
}

// GetDashboardStats returns the cached dashboard metrics, recomputing them
// from the store when the cache is cold.
func GetDashboardStats(repo recovery.Repository) (DashboardStats, error) {
	if cached, err := cache.Get(cacheKeyDashboard); err == nil {
		var stats DashboardStats
		if json.Unmarshal([]byte(cached), &stats) == nil {
			return stats, nil
		}
	}

	records, err := repo.ListFailedPaymentsWithRelations()
	if err != nil {
		return DashboardStats{}, err
	}
	recoveredTotal, err := repo.SumRecoveredRevenue()
	if err != nil {
		return DashboardStats{}, err
	}

	stats := Compute(records, recoveredTotal)
	if encoded, err := json.Marshal(stats); err == nil {
		if err := cache.Set(cacheKeyDashboard, encoded, cacheExpiration); err != nil {
			log.Printf("Failed to cache dashboard statistics: %v", err)
		}
	}
	return stats, nil
}

// InvalidateDashboardStats drops the cached metrics so the next read
// recomputes them.
func InvalidateDashboardStats() {
	if err := cache.Delete(cacheKeyDashboard); err != nil {
		log.Printf("Failed to invalidate dashboard statistics cache: %v", err)
	}
}
