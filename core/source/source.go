// Package source reads operational statistics from a running
// MySQL-compatible server, classifies the engine, and produces the
// canonical workload description for it.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"regexp"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/sunxiaoguang/serverless-cost-calculator/core/workload"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/config"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/errors"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/logging"
)

var (
	tidbVersionPattern           = regexp.MustCompile(`^\d+\.\d+\.\d+-(?i:TiDB)-`)
	tidbServerlessVersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+-(?i:TiDB)-v\d+\.\d+\.\d+-(?i:serverless)`)
	mariadbVersionPattern        = regexp.MustCompile(`^\d+\.\d+\.\d+-(?i:MariaDB)`)
)

// Reader samples workload statistics from one database.
type Reader struct {
	db       *sql.DB
	database string

	// confirmation prompt streams, overridable in tests
	stdin  io.Reader
	stdout io.Writer
}

// Open connects to the server described by cfg.
func Open(cfg config.Source) (*Reader, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Source("failed to open database connection", err)
	}
	return &Reader{
		db:       db,
		database: cfg.Database,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
	}, nil
}

// Close releases the underlying connection pool.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Load samples statistics and normalizes them into a workload description.
// It returns (nil, nil) when the server is already a TiDB Serverless
// cluster, which needs no estimation. With analyze set, an interactively
// confirmed ANALYZE pass refreshes table statistics first.
func (r *Reader) Load(ctx context.Context, adv workload.Advisor, analyze bool) (*workload.WorkloadDescription, error) {
	if err := r.db.PingContext(ctx); err != nil {
		return nil, errors.Source("failed to connect to the database", err)
	}

	if analyze {
		if err := r.confirmAndRunAnalyze(ctx, adv); err != nil {
			return nil, err
		}
	}

	tables, err := r.readTablesStatistics(ctx)
	if err != nil {
		return nil, err
	}

	isTiDB, err := r.matchesVersion(ctx, tidbVersionPattern)
	if err != nil {
		return nil, err
	}
	if isTiDB {
		serverless, err := r.matchesVersion(ctx, tidbServerlessVersionPattern)
		if err != nil {
			return nil, err
		}
		if serverless {
			return nil, nil
		}
		summary, err := r.readTiDBStatementsSummary(ctx)
		if err != nil {
			return nil, err
		}
		metrics, err := r.readTiDBSystemMetrics(ctx)
		if err != nil {
			return nil, err
		}
		w := workload.FromTiDBStatistics(adv, tables, summary, metrics)
		return &w, nil
	}

	performanceSchema, err := r.checkVariableValue(ctx, "performance_schema", "ON")
	if err != nil {
		return nil, err
	}
	if performanceSchema {
		summary, err := r.readMySQLStatementsSummary(ctx)
		if err != nil {
			return nil, err
		}
		w := workload.FromMySQLStatistics(adv, tables, summary)
		return &w, nil
	}

	isMariaDB, err := r.matchesVersion(ctx, mariadbVersionPattern)
	if err != nil {
		return nil, err
	}
	if isMariaDB {
		return nil, errors.New(errors.TypeSource, "Please enable the 'Performance Schema' on your MariaDB server and keep it active for at least a full business day to ensure comprehensive workload coverage. For instructions, see this guide: https://mariadb.com/kb/en/performance-schema-overview/#activating-the-performance-schema")
	}
	return nil, errors.New(errors.TypeSource, "Please enable the 'Performance Schema' on your MySQL server and keep it active for at least a full business day to ensure comprehensive workload coverage. For instructions, see this guide: https://dev.mysql.com/doc/refman/5.7/en/performance-schema-startup-configuration.html")
}

func (r *Reader) matchesVersion(ctx context.Context, pattern *regexp.Regexp) (bool, error) {
	var version string
	if err := r.db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return false, errors.Source("failed to read server version", err)
	}
	logging.Debug("server version", zap.String("version", version))
	return pattern.MatchString(version), nil
}

func (r *Reader) checkVariableValue(ctx context.Context, variable, value string) (bool, error) {
	var name, current string
	err := r.db.QueryRowContext(ctx, fmt.Sprintf("SHOW VARIABLES LIKE '%s'", variable)).Scan(&name, &current)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Source(fmt.Sprintf("failed to read server variable '%s'", variable), err)
	}
	return current == value, nil
}
