// Package cmd - estimation flow
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sunxiaoguang/serverless-cost-calculator/core/calculator"
	"github.com/sunxiaoguang/serverless-cost-calculator/core/output"
	"github.com/sunxiaoguang/serverless-cost-calculator/core/source"
	"github.com/sunxiaoguang/serverless-cost-calculator/core/workload"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/config"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/logging"
)

const serverlessNotice = "You are already using TiDB Serverless. Please check your billing in the TiDB Cloud Console for charges. For more information, visit https://docs.pingcap.com/tidbcloud/tidb-cloud-billing"

func runEstimate(cmd *cobra.Command, args []string) error {
	logging.Initialize(verbose)
	defer logging.Sync()

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	renderer := output.NewRenderer(format, os.Stdout)

	sources, err := resolveSources()
	if err != nil {
		return err
	}

	ctx := context.Background()
	workloads := make([]workload.WorkloadDescription, 0, len(sources))
	for _, cfg := range sources {
		w, err := loadWorkload(ctx, renderer, cfg)
		if err != nil {
			return fmt.Errorf("the workload failed to load: %w", err)
		}
		if w == nil {
			renderer.Info(serverlessNotice)
			continue
		}
		workloads = append(workloads, *w)
	}
	if len(workloads) == 0 {
		return nil
	}

	estimations, err := calculator.EstimateBatch(region, workloads)
	if err != nil {
		return fmt.Errorf("the cost estimation failed: %w", err)
	}

	reports := make([]output.Report, len(workloads))
	for i := range workloads {
		reports[i] = output.Report{Workload: workloads[i], Estimation: estimations[i]}
	}
	return renderer.Render(reports)
}

func resolveSources() ([]config.Source, error) {
	if batchFile != "" {
		return config.LoadBatch(batchFile)
	}
	if connection.Database == "" {
		return nil, fmt.Errorf("either --database or --batch is required")
	}
	cfg := connection
	cfg.ApplyDefaults()
	return []config.Source{cfg}, nil
}

func loadWorkload(ctx context.Context, renderer output.Renderer, cfg config.Source) (*workload.WorkloadDescription, error) {
	renderer.Welcome(cfg)
	logging.Debug("sampling workload statistics",
		zap.String("host", cfg.Host), zap.String("database", cfg.Database))

	reader, err := source.Open(cfg)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return reader.Load(ctx, renderer, analyze)
}
