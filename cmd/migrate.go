package cmd

import (
	"log"

	"github.com/anoixa/image-vault/config"
	"github.com/anoixa/image-vault/database"
	"github.com/anoixa/image-vault/database/schema"
	"github.com/spf13/cobra"
)

// migrateCmd 数据库结构迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long:  `Bring the database schema up to the current version and exit.`,
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()

		factory, err := database.NewFactory(cfg)
		if err != nil {
			log.Fatalf("Failed to connect database: %v", err)
		}
		defer factory.Close()

		provider := factory.GetProvider()
		manager := schema.NewManager(provider.DB(), provider.Name())

		current, err := manager.Version()
		if err != nil {
			log.Fatalf("Failed to read schema version: %v", err)
		}
		log.Printf("Current schema version: %d (target %d)", current, schema.TargetVersion)

		applied, err := manager.EnsureSchema()
		if err != nil {
			log.Fatalf("Migration failed: %v", err)
		}

		if applied == 0 {
			log.Println("Schema already up to date")
			return
		}
		log.Printf("Applied %d migration(s), schema now at version %d", applied, schema.TargetVersion)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
