package source

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sunxiaoguang/serverless-cost-calculator/core/workload"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/errors"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/logging"
)

// confirmAndRunAnalyze asks for confirmation, then refreshes the optimizer
// statistics every estimation formula depends on. Declining is not an error.
func (r *Reader) confirmAndRunAnalyze(ctx context.Context, adv workload.Advisor) error {
	scanner := bufio.NewScanner(r.stdin)
	for {
		adv.Warnf("Running ANALYZE on the production system may affect ongoing queries. Do you want to proceed? (yes/no): ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return errors.Source("failed to read confirmation", err)
			}
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "yes":
			return r.runAnalyze(ctx, adv)
		case "no":
			return nil
		}
	}
}

func (r *Reader) runAnalyze(ctx context.Context, adv workload.Advisor) error {
	tables, err := r.listBaseTables(ctx)
	if err != nil {
		return err
	}
	for _, table := range tables {
		adv.Warnf("Analyzing table `%s`. Press CTRL+C to terminate if you notice unexpected performance impacts on the production system.", table)
		logging.Debug("analyzing table", zap.String("table", table))
		if _, err := r.db.ExecContext(ctx, fmt.Sprintf("ANALYZE TABLE `%s`", table)); err != nil {
			return errors.Source(fmt.Sprintf("failed to analyze table '%s'", table), err)
		}
	}
	return nil
}

func (r *Reader) listBaseTables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'")
	if err != nil {
		return nil, errors.Source("failed to list tables", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name, tableType string
		if err := rows.Scan(&name, &tableType); err != nil {
			return nil, errors.Source("failed to list tables", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Source("failed to list tables", err)
	}
	return tables, nil
}
