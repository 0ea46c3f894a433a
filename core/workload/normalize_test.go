package workload

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func ptr(v uint64) *uint64 {
	return &v
}

// fixtures producing round per-hour figures: 1 GiB of row storage split in
// half between data and index, 1 MiB average row size, 4 storage regions.
func testTables() TablesStatistics {
	return TablesStatistics{
		TotalRows:         ptr(1024),
		TotalDataInBytes:  ptr(512 * 1024 * 1024),
		TotalIndexInBytes: ptr(512 * 1024 * 1024),
	}
}

func window(minutes int) (time.Time, time.Time) {
	end := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return end.Add(-time.Duration(minutes) * time.Minute), end
}

func TestFromMySQLStatistics(t *testing.T) {
	start, end := window(60)
	summary := MySQLStatementsSummary{
		ReadQueries:  2,
		ReadRows:     1024,
		SentRows:     100,
		WriteQueries: 4,
		WriteRows:    512,
		StartTime:    start,
		EndTime:      end,
	}
	w := FromMySQLStatistics(NopAdvisor{}, testTables(), summary)

	// 1024 rows of 1 MiB each over one hour reads back the full 1 GiB.
	if w.Read.BytesPerHour != 1024*1024*1024 {
		t.Errorf("read bytes per hour = %d, want %d", w.Read.BytesPerHour, 1024*1024*1024)
	}
	// Two logical queries each scanning 512 MiB touch 2 of the 4 regions,
	// so the effective request rate is amplified to 4.
	if got := w.Read.Requests(); got != 4 {
		t.Errorf("read requests per hour = %d, want 4", got)
	}
	if w.Write.BytesPerHour != 512*1024*1024 {
		t.Errorf("write bytes per hour = %d, want %d", w.Write.BytesPerHour, 512*1024*1024)
	}
	// 128 MiB per write fits inside one region; no amplification.
	if got := w.Write.Requests(); got != 4 {
		t.Errorf("write requests per hour = %d, want 4", got)
	}
	if w.Egress.BytesPerHour != 100*1024*1024 {
		t.Errorf("egress bytes per hour = %d, want %d", w.Egress.BytesPerHour, 100*1024*1024)
	}
	if w.Egress.RequestsPerHour != nil {
		t.Error("egress must not carry a request rate")
	}
	if w.Storage.DataInBytes != 512*1024*1024 || w.Storage.IndexInBytes != 512*1024*1024 {
		t.Errorf("storage carried through scaled: %+v", w.Storage)
	}
}

func TestFromMySQLStatisticsIdempotent(t *testing.T) {
	start, end := window(36 * 60)
	summary := MySQLStatementsSummary{
		ReadQueries:  77,
		ReadRows:     12345,
		SentRows:     4242,
		WriteQueries: 13,
		WriteRows:    999,
		StartTime:    start,
		EndTime:      end,
	}
	first := FromMySQLStatistics(NopAdvisor{}, testTables(), summary)
	second := FromMySQLStatistics(NopAdvisor{}, testTables(), summary)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalization is not deterministic: %+v != %+v", first, second)
	}
}

func TestFromMySQLStatisticsZeroInput(t *testing.T) {
	w := FromMySQLStatistics(NopAdvisor{}, TablesStatistics{}, MySQLStatementsSummary{})
	if w.Read.BytesPerHour != 0 || w.Write.BytesPerHour != 0 || w.Egress.BytesPerHour != 0 {
		t.Errorf("zero input produced nonzero byte rates: %+v", w)
	}
	// Request rates clamp to the one-per-hour minimum instead of dividing
	// by zero.
	if w.Read.Requests() != 1 || w.Write.Requests() != 1 {
		t.Errorf("zero input request rates not clamped: read=%d write=%d", w.Read.Requests(), w.Write.Requests())
	}
	if w.Storage != (StorageDescription{}) {
		t.Errorf("zero input produced nonzero storage: %+v", w.Storage)
	}
}

func TestSummaryDurationAdvisories(t *testing.T) {
	cases := []struct {
		name     string
		minutes  int
		warnings int
		advice   int
	}{
		{"under an hour", 30, 1, 0},
		{"under a day", 10 * 60, 0, 1},
		{"full day", 24 * 60, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adv := &CollectingAdvisor{}
			start, end := window(tc.minutes)
			FromMySQLStatistics(adv, testTables(), MySQLStatementsSummary{StartTime: start, EndTime: end})
			if len(adv.Warnings) != tc.warnings {
				t.Errorf("warnings = %v, want %d", adv.Warnings, tc.warnings)
			}
			if len(adv.Advice) != tc.advice {
				t.Errorf("advice = %v, want %d", adv.Advice, tc.advice)
			}
		})
	}
}

func TestFromTiDBStatisticsWithSummary(t *testing.T) {
	start, end := window(120)
	tables := TablesStatistics{
		TotalRows:         ptr(2),
		TotalDataInBytes:  ptr(1024),
		TotalIndexInBytes: ptr(1024),
	}
	summary := &TiDBStatementsSummary{
		SentRows:   1200,
		WriteBytes: 1200,
		StartTime:  start,
		EndTime:    end,
	}
	metrics := TiDBSystemMetrics{
		WriteBytesPerHour:    999,
		WriteRequestsPerHour: 300,
		ReadBytesPerHour:     1000,
		ReadRequestsPerHour:  500,
	}
	w := FromTiDBStatistics(NopAdvisor{}, tables, summary, metrics)

	// Request rates come straight from system metrics, unamplified.
	if got := w.Read.Requests(); got != 500 {
		t.Errorf("read requests per hour = %d, want 500", got)
	}
	if got := w.Write.Requests(); got != 300 {
		t.Errorf("write requests per hour = %d, want 300", got)
	}
	if w.Read.BytesPerHour != 1000 {
		t.Errorf("read bytes per hour = %d, want 1000", w.Read.BytesPerHour)
	}
	// The statement summary refines write volume: 1200 bytes over two
	// hours is 600 per hour, preferred over the metrics figure.
	if w.Write.BytesPerHour != 600 {
		t.Errorf("write bytes per hour = %d, want 600", w.Write.BytesPerHour)
	}
	// 1200 sent rows of 1024 bytes over two hours.
	if w.Egress.BytesPerHour != 614400 {
		t.Errorf("egress bytes per hour = %d, want 614400", w.Egress.BytesPerHour)
	}
}

func TestFromTiDBStatisticsWithoutSummary(t *testing.T) {
	adv := &CollectingAdvisor{}
	metrics := TiDBSystemMetrics{
		WriteBytesPerHour:    999,
		WriteRequestsPerHour: 300,
		ReadBytesPerHour:     1000,
		ReadRequestsPerHour:  500,
	}
	w := FromTiDBStatistics(adv, testTables(), nil, metrics)

	if w.Write.BytesPerHour != 999 {
		t.Errorf("write bytes per hour = %d, want the metrics figure 999", w.Write.BytesPerHour)
	}
	if w.Egress.BytesPerHour != 0 {
		t.Errorf("egress bytes per hour = %d, want 0 without statement data", w.Egress.BytesPerHour)
	}
	if len(adv.Advice) != 2 {
		t.Fatalf("advice = %v, want the two statement summary hints", adv.Advice)
	}
	if !strings.Contains(adv.Advice[0], "Statement Summary Tables") {
		t.Errorf("unexpected advisory: %q", adv.Advice[0])
	}
}

func TestFromTiDBStatisticsZeroInput(t *testing.T) {
	w := FromTiDBStatistics(NopAdvisor{}, TablesStatistics{}, nil, TiDBSystemMetrics{})
	if w.Read.Requests() != 0 || w.Write.Requests() != 0 {
		t.Errorf("zero metrics produced nonzero request rates: %+v", w)
	}
	zero := &TiDBStatementsSummary{}
	w = FromTiDBStatistics(NopAdvisor{}, TablesStatistics{}, zero, TiDBSystemMetrics{})
	if w.Write.BytesPerHour != 0 || w.Egress.BytesPerHour != 0 {
		t.Errorf("zero summary produced nonzero byte rates: %+v", w)
	}
}
