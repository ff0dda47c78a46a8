package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skuid/aliasql"
	"github.com/skuid/aliasql/examples/product"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var raceCmd = &cobra.Command{
	Use:   "race",
	Short: "Run the catalog scenarios from many goroutines at once",
	Long: `Seeds the products table and runs --rounds catalog scenarios from each goroutine.

With --mode shared every goroutine builds its queries from the same Product
instance, and queries displaced by a later bind fail with UNMAPPED_FIELD as
soon as they reference a field. A shared run without failures is unexpected.
With --mode local each goroutine reuses one instance attached to its own
context, and with --mode fresh every query gets a new instance. Both are
expected to pass every scenario.`,
	RunE: race,
}

func init() {
	raceCmd.Flags().Int("goroutines", 800, "The number of goroutines running scenarios at once")
	raceCmd.Flags().String("mode", string(product.Shared), "How goroutines get their instance: shared, local or fresh")
	raceCmd.Flags().Int("rounds", 1, "The number of scenarios each goroutine runs per race")
	raceCmd.Flags().Int("runs", 1, "The number of times to repeat the race")

	RootCmd.AddCommand(raceCmd)
}

func race(cmd *cobra.Command, args []string) error {
	goroutines, _ := cmd.Flags().GetInt("goroutines")
	rounds, _ := cmd.Flags().GetInt("rounds")
	runs, _ := cmd.Flags().GetInt("runs")
	modeName, _ := cmd.Flags().GetString("mode")

	mode, err := product.ParseMode(modeName)
	if err != nil {
		return err
	}
	if goroutines < 1 || rounds < 1 || runs < 1 {
		return fmt.Errorf("--goroutines, --rounds and --runs must be at least 1")
	}

	props, cleanup, err := connectionProps()
	if err != nil {
		return err
	}
	defer cleanup()

	db, err := aliasql.Open(props)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	products, err := product.Catalog()
	if err != nil {
		return err
	}
	if err := product.Seed(ctx, db, products); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	unexpected := 0
	for run := 1; run <= runs; run++ {
		report := product.Race(ctx, db, mode, goroutines, rounds)
		fmt.Fprintf(
			out,
			"run %d: mode=%s goroutines=%d queries=%d failures=%d (unmapped=%d mismatched=%d other=%d)\n",
			run, report.Mode, report.Goroutines, report.Queries, report.Failures(),
			report.Unmapped, report.Mismatches, len(report.Errors),
		)
		for _, err := range report.Errors {
			zap.L().Error("scenario failed", zap.Int("run", run), zap.Error(err))
		}

		// Shared runs are expected to lose bindings, the others never
		if (mode == product.Shared) == (report.Failures() == 0) {
			unexpected++
		}
	}

	if unexpected > 0 {
		return fmt.Errorf("%d of %d runs in %s mode had unexpected results", unexpected, runs, mode)
	}
	return nil
}

// connectionProps reads the connection settings, falling back to a sqlite
// database in a temporary directory that cleanup removes.
func connectionProps() (aliasql.ConnectionProps, func(), error) {
	props := aliasql.LoadConnectionProps(config)
	if maxOpen := config.GetInt(aliasql.ConfigMaxOpenConns); props.MaxOpenConns == nil && maxOpen > 0 {
		props.MaxOpenConns = &maxOpen
	}

	if props.ConnString != "" {
		return props, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "aliasql")
	if err != nil {
		return props, nil, err
	}

	props.Driver = aliasql.SQLite.DriverName
	props.ConnString = aliasql.SQLiteDSN(filepath.Join(dir, "products.db"))
	zap.L().Debug("using a temporary sqlite database", zap.String("dir", dir))

	return props, func() { os.RemoveAll(dir) }, nil
}
