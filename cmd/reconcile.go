package cmd

import (
	"context"
	"log"

	"github.com/anoixa/image-vault/config"
	"github.com/anoixa/image-vault/internal/app"
	"github.com/spf13/cobra"
)

// reconcileCmd 手动触发一致性核对
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile storage backend with database records",
	Long: `List identifiers on the storage backend, soft-delete records whose
files are gone and report orphaned files. Runs the one-shot legacy
sidecar import first if it has not completed yet.`,
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()

		container := app.NewContainer(cfg)
		if err := container.Init(); err != nil {
			log.Fatalf("Failed to initialize services: %v", err)
		}
		defer container.Close()

		ctx := context.Background()
		ids, err := container.GetStorageProvider().ListIdentifiers(ctx)
		if err != nil {
			log.Fatalf("Failed to list storage identifiers: %v", err)
		}

		result, err := container.GetReconcileService().Run(ctx, ids)
		if err != nil {
			log.Fatalf("Reconciliation failed: %v", err)
		}

		log.Printf("Reconciliation finished: %d missing, %d orphaned", result.MissingCount, result.OrphanCount)
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
