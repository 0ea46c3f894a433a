// Package calculator converts a canonical workload into a monthly cost
// estimation under a region's pricing coefficients.
package calculator

import (
	"github.com/sunxiaoguang/serverless-cost-calculator/core/workload"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/errors"
)

const (
	kilo          = 1024
	mega          = kilo * 1024
	hoursPerMonth = 730
)

// WorkloadUsage is the unit-converted resource usage a workload consumes.
// It decouples unit conversion from pricing.
type WorkloadUsage struct {
	// RowBasedStorageInMiB is the current storage footprint
	RowBasedStorageInMiB uint64

	// NetworkEgressInMiB is the hourly egress volume. It is scaled to a
	// monthly figure only when combined with request units at pricing time.
	NetworkEgressInMiB uint64

	// RequestUnitsInMillion is the monthly request unit consumption
	RequestUnitsInMillion uint64
}

// WorkloadEstimation is the monthly cost breakdown. FreeCredit is carried
// through unapplied; use TotalWithCredit for the billable total.
type WorkloadEstimation struct {
	StorageCost      float64 `json:"storage_cost" yaml:"storage_cost"`
	RequestUnitsCost float64 `json:"request_units_cost" yaml:"request_units_cost"`
	FreeCredit       float64 `json:"free_credit" yaml:"free_credit"`
}

// estimateUsage converts hourly rates and storage sizes into billable units.
// The divisors and the write multiplier encode the provider's published
// request unit model for small reads, byte-scanned reads, and amplified
// writes.
func estimateUsage(w workload.WorkloadDescription) WorkloadUsage {
	readRequestUnitsPerHour := w.Read.Requests()/8 + w.Read.BytesPerHour/(64*kilo)
	writeRequestUnitsPerHour := (w.Write.Requests() + w.Write.BytesPerHour/kilo) * 3
	requestUnitsPerHour := readRequestUnitsPerHour + writeRequestUnitsPerHour
	return WorkloadUsage{
		RowBasedStorageInMiB:  (w.Storage.DataInBytes + w.Storage.IndexInBytes) / mega,
		NetworkEgressInMiB:    w.Egress.BytesPerHour / mega,
		RequestUnitsInMillion: requestUnitsPerHour * hoursPerMonth / 1_000_000,
	}
}

// calculate applies a region's coefficients to a usage vector. Egress is
// billed at the request unit rate rather than a separate egress rate; the
// hourly egress figure is scaled to a full month before it is combined.
func calculate(pricing RegionPricing, usage WorkloadUsage) WorkloadEstimation {
	monthlyEgressInGiB := float64(usage.NetworkEgressInMiB) * hoursPerMonth / 1024
	return WorkloadEstimation{
		StorageCost:      float64(usage.RowBasedStorageInMiB) * pricing.RowBasedStoragePerGiB / 1024,
		RequestUnitsCost: (monthlyEgressInGiB + float64(usage.RequestUnitsInMillion)) * pricing.RequestUnitsPerMillion,
		FreeCredit:       pricing.FreeCredit,
	}
}

// Estimate prices a workload in the given region. The only failure mode is
// an unrecognized region identifier.
func Estimate(region string, w workload.WorkloadDescription) (WorkloadEstimation, error) {
	pricing, ok := regionPricing[region]
	if !ok {
		return WorkloadEstimation{}, errors.InvalidRegion(region)
	}
	return calculate(pricing, estimateUsage(w)), nil
}

// EstimateBatch prices several workloads independently, preserving order.
func EstimateBatch(region string, workloads []workload.WorkloadDescription) ([]WorkloadEstimation, error) {
	estimations := make([]WorkloadEstimation, 0, len(workloads))
	for _, w := range workloads {
		estimation, err := Estimate(region, w)
		if err != nil {
			return nil, err
		}
		estimations = append(estimations, estimation)
	}
	return estimations, nil
}

// TotalWithCredit returns the monthly total after the free credit offset,
// clamped at zero.
func TotalWithCredit(e WorkloadEstimation) float64 {
	total := e.StorageCost + e.RequestUnitsCost - e.FreeCredit
	if total < 0 {
		return 0
	}
	return total
}
