package source

import (
	"context"
	"database/sql"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/sunxiaoguang/serverless-cost-calculator/core/workload"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/errors"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/logging"
)

// Statistics are sampled from a window of up to the last seven days.
const samplingWindowDays = 7

var writeStatementPattern = regexp.MustCompile(`^INSERT |^DELETE |^UPDATE `)

func (r *Reader) readTablesStatistics(ctx context.Context) (workload.TablesStatistics, error) {
	var rows, data, index sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT CAST(SUM(TABLE_ROWS) AS UNSIGNED), CAST(SUM(DATA_LENGTH) AS UNSIGNED), CAST(SUM(INDEX_LENGTH) AS UNSIGNED) FROM information_schema.TABLES WHERE TABLE_SCHEMA=?",
		r.database).Scan(&rows, &data, &index)
	if err != nil {
		return workload.TablesStatistics{}, errors.Source("failed to read table statistics", err)
	}
	return workload.TablesStatistics{
		TotalRows:         nullable(rows),
		TotalDataInBytes:  nullable(data),
		TotalIndexInBytes: nullable(index),
	}, nil
}

func (r *Reader) readMySQLStatementsSummary(ctx context.Context) (workload.MySQLStatementsSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DIGEST_TEXT, COUNT_STAR, SUM_ROWS_AFFECTED, SUM_ROWS_SENT, SUM_ROWS_EXAMINED, FIRST_SEEN, LAST_SEEN FROM performance_schema.events_statements_summary_by_digest WHERE SCHEMA_NAME=? AND LAST_SEEN >= DATE_SUB(NOW(), INTERVAL ? DAY)",
		r.database, samplingWindowDays)
	if err != nil {
		return workload.MySQLStatementsSummary{}, errors.Source("failed to read the statements summary", err)
	}
	defer rows.Close()

	now := time.Now()
	windowStart := now.AddDate(0, 0, -samplingWindowDays)
	// Until the first row arrives the window is inverted; folding min/max
	// over the digests narrows it to the observed span.
	summary := workload.MySQLStatementsSummary{StartTime: now, EndTime: windowStart}
	seen := false
	for rows.Next() {
		var (
			digest              sql.NullString
			count, affected     uint64
			sent, examined      uint64
			firstSeen, lastSeen time.Time
		)
		if err := rows.Scan(&digest, &count, &affected, &sent, &examined, &firstSeen, &lastSeen); err != nil {
			return workload.MySQLStatementsSummary{}, errors.Source("failed to read the statements summary", err)
		}
		seen = true
		if lastSeen.After(summary.EndTime) {
			summary.EndTime = lastSeen
		}
		if firstSeen.Before(summary.StartTime) {
			summary.StartTime = firstSeen
		}
		summary.ReadRows += examined
		summary.SentRows += sent
		summary.WriteRows += affected
		if writeStatementPattern.MatchString(digest.String) {
			summary.WriteQueries += count
		} else {
			summary.ReadQueries += count
		}
	}
	if err := rows.Err(); err != nil {
		return workload.MySQLStatementsSummary{}, errors.Source("failed to read the statements summary", err)
	}
	if !seen {
		return workload.MySQLStatementsSummary{StartTime: windowStart, EndTime: now}, nil
	}
	return summary, nil
}

func (r *Reader) readTiDBStatementsSummary(ctx context.Context) (*workload.TiDBStatementsSummary, error) {
	enabled, err := r.checkVariableValue(ctx, "tidb_enable_stmt_summary", "ON")
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT STMT_TYPE, EXEC_COUNT, CAST(AVG_RESULT_ROWS AS UNSIGNED), AVG_PROCESSED_KEYS, CAST(AVG_WRITE_SIZE AS UNSIGNED), FIRST_SEEN, LAST_SEEN FROM information_schema.CLUSTER_STATEMENTS_SUMMARY WHERE SCHEMA_NAME=? AND LAST_SEEN >= DATE_SUB(NOW(), INTERVAL ? DAY) UNION ALL SELECT STMT_TYPE, EXEC_COUNT, CAST(AVG_RESULT_ROWS AS UNSIGNED), AVG_PROCESSED_KEYS, CAST(AVG_WRITE_SIZE AS UNSIGNED), FIRST_SEEN, LAST_SEEN FROM information_schema.CLUSTER_STATEMENTS_SUMMARY_HISTORY WHERE SCHEMA_NAME=? AND LAST_SEEN >= DATE_SUB(NOW(), INTERVAL ? DAY)",
		r.database, samplingWindowDays, r.database, samplingWindowDays)
	if err != nil {
		return nil, errors.Source("failed to read the statements summary", err)
	}
	defer rows.Close()

	now := time.Now()
	windowStart := now.AddDate(0, 0, -samplingWindowDays)
	summary := workload.TiDBStatementsSummary{StartTime: now, EndTime: windowStart}
	seen := false
	for rows.Next() {
		var (
			statementType          string
			count, avgResultRows   uint64
			avgKeys, avgWriteBytes uint64
			firstSeen, lastSeen    time.Time
		)
		if err := rows.Scan(&statementType, &count, &avgResultRows, &avgKeys, &avgWriteBytes, &firstSeen, &lastSeen); err != nil {
			return nil, errors.Source("failed to read the statements summary", err)
		}
		seen = true
		if lastSeen.After(summary.EndTime) {
			summary.EndTime = lastSeen
		}
		if firstSeen.Before(summary.StartTime) {
			summary.StartTime = firstSeen
		}
		summary.ReadRows += avgKeys * count
		summary.SentRows += avgResultRows * count
		summary.WriteBytes += avgWriteBytes * count
		switch statementType {
		case "Delete", "Update", "Insert", "Replace":
			summary.WriteQueries += count
		default:
			summary.ReadQueries += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Source("failed to read the statements summary", err)
	}
	if !seen {
		return &workload.TiDBStatementsSummary{StartTime: windowStart, EndTime: now}, nil
	}
	return &summary, nil
}

const tidbSystemMetricsQuery = "SELECT 'write_bytes' AS type, CAST(SUM(`value`) AS UNSIGNED) AS `value` FROM metrics_schema.tidb_kv_write_total_size WHERE time BETWEEN ? AND ? UNION " +
	"SELECT 'write_requests' AS type, CAST(SUM(`value`) AS UNSIGNED) AS `value` FROM metrics_schema.tidb_kv_request_total_count WHERE type IN ('Prewrite', 'Commit') AND time BETWEEN ? AND ? UNION " +
	"SELECT 'read_bytes' AS type, CAST(SUM(`value`) AS UNSIGNED) AS `value` FROM metrics_schema.tikv_cop_total_rocksdb_perf_statistics WHERE metric IN ('get_read_bytes', 'iter_red_bytes') AND req IN ('index', 'select') AND time BETWEEN ? AND ? UNION " +
	"SELECT 'read_requests' AS type, CAST(SUM(`value`) AS UNSIGNED) AS `value` FROM metrics_schema.tidb_kv_request_total_count WHERE type NOT IN ('Prewrite', 'Commit') AND time BETWEEN ? AND ?"

// readTiDBSystemMetrics sums throughput metrics over a probing window that
// shrinks one day at a time; wide windows can exceed the metrics backend's
// query limits.
func (r *Reader) readTiDBSystemMetrics(ctx context.Context) (workload.TiDBSystemMetrics, error) {
	for interval := samplingWindowDays; ; interval-- {
		var start, end string
		err := r.db.QueryRowContext(ctx,
			"SELECT CAST(DATE_SUB(NOW(), INTERVAL ? DAY) AS CHAR), CAST(NOW() AS CHAR)",
			interval).Scan(&start, &end)
		if err != nil {
			return workload.TiDBSystemMetrics{}, errors.Source("failed to compute the metrics window", err)
		}

		metrics, err := r.querySystemMetrics(ctx, start, end, uint64(interval)*24)
		if err == nil {
			return metrics, nil
		}
		if interval == 1 {
			return workload.TiDBSystemMetrics{}, errors.New(errors.TypeSource, "failed to read metrics schema, please check your prometheus setup and make sure it is working as expected")
		}
		logging.Debug("metrics window query failed, shrinking interval",
			zap.Int("days", interval), zap.Error(err))
	}
}

func (r *Reader) querySystemMetrics(ctx context.Context, start, end string, hours uint64) (workload.TiDBSystemMetrics, error) {
	rows, err := r.db.QueryContext(ctx, tidbSystemMetricsQuery,
		start, end, start, end, start, end, start, end)
	if err != nil {
		return workload.TiDBSystemMetrics{}, err
	}
	defer rows.Close()

	var metrics workload.TiDBSystemMetrics
	for rows.Next() {
		var (
			metricType string
			value      sql.NullInt64
		)
		if err := rows.Scan(&metricType, &value); err != nil {
			return workload.TiDBSystemMetrics{}, err
		}
		total := uint64(value.Int64)
		if !value.Valid {
			total = 0
		}
		switch metricType {
		case "write_bytes":
			metrics.WriteBytesPerHour = total / hours
		case "write_requests":
			metrics.WriteRequestsPerHour = total / hours
		case "read_bytes":
			metrics.ReadBytesPerHour = total / hours
		case "read_requests":
			metrics.ReadRequestsPerHour = total / hours
		}
	}
	return metrics, rows.Err()
}

func nullable(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	u := uint64(v.Int64)
	return &u
}
