package workload

import (
	"time"
)

const (
	// targetRegionSize is the fixed size of one row-based storage region.
	// A query touching more bytes than fit in a single region fans out to
	// several of them, which multiplies its effective request count.
	targetRegionSize = 256 * 1024 * 1024

	minutesPerHour = 60
)

// TablesStatistics is the aggregated table metadata for the sampled schema.
// Fields are nil when the schema has no tables or statistics are missing.
type TablesStatistics struct {
	TotalRows         *uint64
	TotalDataInBytes  *uint64
	TotalIndexInBytes *uint64
}

// MySQLStatementsSummary aggregates the performance schema statement digests
// observed inside a sampling window.
type MySQLStatementsSummary struct {
	ReadQueries  uint64
	ReadRows     uint64
	SentRows     uint64
	WriteQueries uint64
	WriteRows    uint64
	StartTime    time.Time
	EndTime      time.Time
}

// TiDBStatementsSummary aggregates the cluster statement summary tables
// observed inside a sampling window.
type TiDBStatementsSummary struct {
	ReadQueries  uint64
	ReadRows     uint64
	SentRows     uint64
	WriteQueries uint64
	WriteBytes   uint64
	StartTime    time.Time
	EndTime      time.Time
}

// TiDBSystemMetrics is pre-aggregated hourly throughput read from the
// metrics schema. These figures are request-accurate and need no region
// amplification.
type TiDBSystemMetrics struct {
	WriteBytesPerHour    uint64
	WriteRequestsPerHour uint64
	ReadBytesPerHour     uint64
	ReadRequestsPerHour  uint64
}

// FromMySQLStatistics normalizes MySQL performance schema statistics into a
// canonical workload. Statement digests only count logical queries, so the
// per-request rate is amplified by the estimated number of storage regions a
// request of that size touches.
func FromMySQLStatistics(adv Advisor, tables TablesStatistics, summary MySQLStatementsSummary) WorkloadDescription {
	durationInMinutes := windowMinutes(summary.StartTime, summary.EndTime)
	checkSummaryDuration(adv, durationInMinutes)

	totalStorageInBytes := max(orZero(tables.TotalIndexInBytes)+orZero(tables.TotalDataInBytes), 1)
	averageRowSizeInBytes := totalStorageInBytes / max(orZero(tables.TotalRows), 1)
	estimatedNumberOfRegions := totalStorageInBytes / targetRegionSize

	readBytesPerHour := minutesPerHour * averageRowSizeInBytes * summary.ReadRows / durationInMinutes
	readQueriesPerHour := max(minutesPerHour*summary.ReadQueries/durationInMinutes, 1)
	readBytesPerRequest := readBytesPerHour / readQueriesPerHour
	readRegionsPerQuery := max(readBytesPerRequest*estimatedNumberOfRegions/totalStorageInBytes, 1)

	writeBytesPerHour := minutesPerHour * averageRowSizeInBytes * summary.WriteRows / durationInMinutes
	writeQueriesPerHour := max(minutesPerHour*summary.WriteQueries/durationInMinutes, 1)
	writeBytesPerQuery := writeBytesPerHour / writeQueriesPerHour
	writeRegionsPerQuery := max(writeBytesPerQuery*estimatedNumberOfRegions/totalStorageInBytes, 1)

	return WorkloadDescription{
		Read: RequestDescription{
			RequestsPerHour: rate(readQueriesPerHour * readRegionsPerQuery),
			BytesPerHour:    readBytesPerHour,
		},
		Write: RequestDescription{
			RequestsPerHour: rate(writeQueriesPerHour * writeRegionsPerQuery),
			BytesPerHour:    writeBytesPerHour,
		},
		Egress: RequestDescription{
			BytesPerHour: minutesPerHour * averageRowSizeInBytes * summary.SentRows / durationInMinutes,
		},
		Storage: StorageDescription{
			DataInBytes:  orZero(tables.TotalDataInBytes),
			IndexInBytes: orZero(tables.TotalIndexInBytes),
		},
	}
}

// FromTiDBStatistics normalizes TiDB statistics into a canonical workload.
// Request rates come straight from system metrics; the statement summary,
// when enabled, refines the write and egress byte volumes.
func FromTiDBStatistics(adv Advisor, tables TablesStatistics, summary *TiDBStatementsSummary, metrics TiDBSystemMetrics) WorkloadDescription {
	var writeBytesPerHour, sentBytesPerHour uint64
	if summary != nil {
		durationInMinutes := windowMinutes(summary.StartTime, summary.EndTime)
		checkSummaryDuration(adv, durationInMinutes)
		averageRowSizeInBytes := (orZero(tables.TotalIndexInBytes) + orZero(tables.TotalDataInBytes)) /
			max(orZero(tables.TotalRows), 1)
		writeBytesPerHour = minutesPerHour * summary.WriteBytes / durationInMinutes
		sentBytesPerHour = minutesPerHour * summary.SentRows * averageRowSizeInBytes / durationInMinutes
	} else {
		adv.Advisef("The 'Statement Summary Tables' are disabled; when they are available, estimations can be more accurate.")
		adv.Advisef("For detailed instruction, visit https://docs.pingcap.com/tidb/stable/statement-summary-tables#parameter-configuration")
		writeBytesPerHour = metrics.WriteBytesPerHour
	}
	return WorkloadDescription{
		Read: RequestDescription{
			RequestsPerHour: rate(metrics.ReadRequestsPerHour),
			BytesPerHour:    metrics.ReadBytesPerHour,
		},
		Write: RequestDescription{
			RequestsPerHour: rate(metrics.WriteRequestsPerHour),
			BytesPerHour:    writeBytesPerHour,
		},
		Egress: RequestDescription{
			BytesPerHour: sentBytesPerHour,
		},
		Storage: StorageDescription{
			DataInBytes:  orZero(tables.TotalDataInBytes),
			IndexInBytes: orZero(tables.TotalIndexInBytes),
		},
	}
}

// windowMinutes returns the sampling window length, clamped to one minute.
func windowMinutes(start, end time.Time) uint64 {
	minutes := int64(end.Sub(start) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return uint64(minutes)
}

func checkSummaryDuration(adv Advisor, durationInMinutes uint64) {
	if durationInMinutes < minutesPerHour {
		adv.Warnf("The statement summary, covering only %d minute(s), is less than an hour's workload. It is highly recommended to collect at least a day's worth of data before running the estimation to prevent distortion.", durationInMinutes)
	} else if durationInMinutes < minutesPerHour*24 {
		adv.Advisef("The statement summary, covering only %d hour(s), is less than a full day's workload and may not reflect the full business. Consider running the tool after collecting data for a longer period to ensure accuracy.", durationInMinutes/minutesPerHour)
	}
}

func orZero(v *uint64) uint64 {
	if v == nil {
		return 0
	}
	return *v
}

func rate(v uint64) *uint64 {
	return &v
}
