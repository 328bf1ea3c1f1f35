package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bactgen/clusterid/internal/clstr"
	"github.com/bactgen/clusterid/internal/duckdb"
)

func newExportCmd() *cobra.Command {
	var (
		clusterPath string
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the cluster index to a DuckDB database",
		Long: `Parse a cd-hit-est cluster report and write its (sample, allele, cluster)
assignments to a DuckDB database for downstream SQL queries.`,
		Example: `  clusterid export -c nucl.clstr -o clusters.duckdb
  duckdb clusters.duckdb "SELECT * FROM clusters WHERE sample = 'ERR024070'"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(clusterPath, outputPath)
		},
	}

	cmd.Flags().StringVarP(&clusterPath, "clusters", "c", "", "Cluster report produced by cd-hit-est")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output DuckDB file path")
	cmd.MarkFlagRequired("clusters")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runExport(clusterPath, outputPath string) error {
	logger := newLogger()
	defer logger.Sync()

	index, err := clstr.ParseFile(clusterPath)
	if err != nil {
		return err
	}

	store, err := duckdb.Open(outputPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.WriteIndex(index); err != nil {
		return err
	}
	if err := store.WriteMetadata(clusterPath); err != nil {
		return err
	}

	logger.Info("exported cluster index",
		zap.String("clusters", clusterPath),
		zap.String("output", outputPath),
		zap.Int("entries", index.Len()))

	return nil
}
