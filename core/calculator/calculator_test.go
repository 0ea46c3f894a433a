package calculator

import (
	"math"
	"testing"

	"github.com/sunxiaoguang/serverless-cost-calculator/core/workload"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/errors"
)

const epsilon = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func rate(v uint64) *uint64 {
	return &v
}

func TestZeroUsageReturnsTablePrices(t *testing.T) {
	expected := map[string]float64{
		"us-east-1":      6.00,
		"us-west-2":      6.00,
		"eu-central-1":   7.20,
		"ap-southeast-1": 7.20,
		"ap-northeast-1": 7.20,
	}
	for _, region := range Regions() {
		estimation, err := Estimate(region, workload.WorkloadDescription{})
		if err != nil {
			t.Fatalf("Estimate(%q) failed: %v", region, err)
		}
		if estimation.StorageCost != 0 {
			t.Errorf("%s: storage cost = %v, want 0", region, estimation.StorageCost)
		}
		if estimation.RequestUnitsCost != 0 {
			t.Errorf("%s: request units cost = %v, want 0", region, estimation.RequestUnitsCost)
		}
		if estimation.FreeCredit != expected[region] {
			t.Errorf("%s: free credit = %v, want %v", region, estimation.FreeCredit, expected[region])
		}
	}
}

func TestInvalidRegion(t *testing.T) {
	_, err := Estimate("not-a-region", workload.WorkloadDescription{})
	if err == nil {
		t.Fatal("Estimate with unknown region did not fail")
	}
	if !errors.IsType(err, errors.TypeInvalidRegion) {
		t.Fatalf("unexpected error type: %v", err)
	}
	if got := err.Error(); got != "the region 'not-a-region' is invalid" {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestStorageCostExample(t *testing.T) {
	w := workload.WorkloadDescription{
		Storage: workload.StorageDescription{DataInBytes: 1024 * 1024 * 1024},
	}
	estimation, err := Estimate("us-east-1", w)
	if err != nil {
		t.Fatal(err)
	}
	if !near(estimation.StorageCost, 0.20) {
		t.Errorf("storage cost = %v, want 0.20", estimation.StorageCost)
	}
	if estimation.RequestUnitsCost != 0 {
		t.Errorf("request units cost = %v, want 0", estimation.RequestUnitsCost)
	}
}

func TestRequestUnitsCostExample(t *testing.T) {
	// 8M read requests per hour is exactly 1M request units per hour,
	// 730 RU-million per month.
	w := workload.WorkloadDescription{
		Read: workload.RequestDescription{RequestsPerHour: rate(8_000_000)},
	}
	estimation, err := Estimate("eu-central-1", w)
	if err != nil {
		t.Fatal(err)
	}
	if !near(estimation.RequestUnitsCost, 730*0.12) {
		t.Errorf("request units cost = %v, want %v", estimation.RequestUnitsCost, 730*0.12)
	}
}

func TestEgressBilledMonthlyAtRequestUnitRate(t *testing.T) {
	// 1 GiB of egress per hour is 730 GiB-equivalent per month.
	w := workload.WorkloadDescription{
		Egress: workload.RequestDescription{BytesPerHour: 1024 * 1024 * 1024},
	}
	estimation, err := Estimate("us-east-1", w)
	if err != nil {
		t.Fatal(err)
	}
	if !near(estimation.RequestUnitsCost, 730*0.10) {
		t.Errorf("request units cost = %v, want %v", estimation.RequestUnitsCost, 730*0.10)
	}
}

func TestStorageCostMonotonicity(t *testing.T) {
	previous := -1.0
	for gib := uint64(1); gib <= 5; gib++ {
		w := workload.WorkloadDescription{
			Storage: workload.StorageDescription{DataInBytes: gib * 1024 * 1024 * 1024},
		}
		estimation, err := Estimate("us-east-1", w)
		if err != nil {
			t.Fatal(err)
		}
		if estimation.StorageCost <= previous {
			t.Fatalf("storage cost did not increase at %d GiB: %v <= %v", gib, estimation.StorageCost, previous)
		}
		previous = estimation.StorageCost
	}
}

func TestRequestCostMonotonicity(t *testing.T) {
	previousRead, previousWrite := -1.0, -1.0
	for requests := uint64(1_000_000); requests <= 5_000_000; requests += 1_000_000 {
		read := workload.WorkloadDescription{
			Read: workload.RequestDescription{RequestsPerHour: rate(requests)},
		}
		write := workload.WorkloadDescription{
			Write: workload.RequestDescription{RequestsPerHour: rate(requests)},
		}
		readEstimation, err := Estimate("us-east-1", read)
		if err != nil {
			t.Fatal(err)
		}
		writeEstimation, err := Estimate("us-east-1", write)
		if err != nil {
			t.Fatal(err)
		}
		if readEstimation.RequestUnitsCost <= previousRead {
			t.Fatalf("read request cost did not increase at %d req/h", requests)
		}
		if writeEstimation.RequestUnitsCost <= previousWrite {
			t.Fatalf("write request cost did not increase at %d req/h", requests)
		}
		previousRead = readEstimation.RequestUnitsCost
		previousWrite = writeEstimation.RequestUnitsCost
	}
}

func TestWriteAmplificationMultiplier(t *testing.T) {
	// 1000 write requests per hour at 1 KiB per request cost
	// (1000 + 1000) * 3 = 6000 request units per hour.
	w := workload.WorkloadDescription{
		Write: workload.RequestDescription{RequestsPerHour: rate(1000), BytesPerHour: 1000 * 1024},
	}
	usage := estimateUsage(w)
	expected := uint64(6000) * hoursPerMonth / 1_000_000
	if usage.RequestUnitsInMillion != expected {
		t.Errorf("request units in million = %d, want %d", usage.RequestUnitsInMillion, expected)
	}
}

func TestEstimateBatchPreservesOrder(t *testing.T) {
	workloads := []workload.WorkloadDescription{
		{Storage: workload.StorageDescription{DataInBytes: 1 * 1024 * 1024 * 1024}},
		{Storage: workload.StorageDescription{DataInBytes: 2 * 1024 * 1024 * 1024}},
		{Read: workload.RequestDescription{RequestsPerHour: rate(8_000_000)}},
	}
	estimations, err := EstimateBatch("us-west-2", workloads)
	if err != nil {
		t.Fatal(err)
	}
	if len(estimations) != len(workloads) {
		t.Fatalf("got %d estimations, want %d", len(estimations), len(workloads))
	}
	for i, w := range workloads {
		single, err := Estimate("us-west-2", w)
		if err != nil {
			t.Fatal(err)
		}
		if estimations[i] != single {
			t.Errorf("estimation %d = %+v, want %+v", i, estimations[i], single)
		}
	}
}

func TestEstimateBatchInvalidRegion(t *testing.T) {
	_, err := EstimateBatch("nowhere-1", []workload.WorkloadDescription{{}})
	if !errors.IsType(err, errors.TypeInvalidRegion) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTotalWithCredit(t *testing.T) {
	uncovered := WorkloadEstimation{StorageCost: 10, RequestUnitsCost: 5, FreeCredit: 6}
	if got := TotalWithCredit(uncovered); !near(got, 9) {
		t.Errorf("total = %v, want 9", got)
	}
	covered := WorkloadEstimation{StorageCost: 1, RequestUnitsCost: 2, FreeCredit: 6}
	if got := TotalWithCredit(covered); got != 0 {
		t.Errorf("total = %v, want 0", got)
	}
}
