package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bactgen/clusterid/internal/clstr"
	"github.com/bactgen/clusterid/internal/table"
)

func newAnnotateCmd() *cobra.Command {
	var (
		tablePath   string
		clusterPath string
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Annotate variant allele calls with cluster identifiers",
		Long: `Read a compiled SRST2 allele table and a cd-hit-est cluster report, and
rewrite every variant-marked allele call ("name*") as "name.clusterID",
where clusterID is the cluster of that sample's consensus sequence.
Uncertainty markers ("?") are stripped from all calls.`,
		Example: `  clusterid annotate -t compiledResults.txt -c nucl.clstr > results_clustered.txt
  clusterid annotate -t compiledResults.txt -c nucl.clstr -o results_clustered.txt
  cat compiledResults.txt | clusterid annotate -t - -c nucl.clstr`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(tablePath, clusterPath, outputPath)
		},
	}

	cmd.Flags().StringVarP(&tablePath, "table", "t", "", "Allele table compiled by SRST2 (use '-' for stdin)")
	cmd.Flags().StringVarP(&clusterPath, "clusters", "c", "", "Cluster report produced by cd-hit-est")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")
	cmd.MarkFlagRequired("table")
	cmd.MarkFlagRequired("clusters")

	return cmd
}

func runAnnotate(tablePath, clusterPath, outputPath string) error {
	logger := newLogger()
	defer logger.Sync()

	index, err := clstr.ParseFile(clusterPath)
	if err != nil {
		return err
	}
	logger.Info("built cluster index",
		zap.String("clusters", clusterPath),
		zap.Int("samples", len(index)),
		zap.Int("entries", index.Len()))

	out := os.Stdout
	if outputPath != "" {
		out, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	}

	rewriter := table.NewRewriter(index)
	rewriter.SetLogger(logger)

	return rewriter.RewriteFile(tablePath, out)
}
