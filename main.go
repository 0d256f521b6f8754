package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	dryRun     bool
	memberName string
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pubsync",
	Short: "Sync member publications into the lab repository",
	Long: `Fetches publications from members' GitHub Pages repositories and
mirrors them into the local publications directory, normalizing
metadata along the way.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if verbose {
			SetDebugMode(true)
		}

		config, err := LoadConfig(configFile)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		session := NewSession()
		syncer := NewSyncer(config, session, defaultPublicationsRoot, dryRun)

		if err := syncer.Run(context.Background(), memberName); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}

		if dryRun {
			log.Printf("Dry run completed. Use --verbose for more details.")
		} else {
			log.Printf("Publication synchronization completed.")
		}
	},
}

func init() {
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")
	rootCmd.Flags().StringVar(&memberName, "member", "", "Sync publications for a specific member only")
	rootCmd.Flags().StringVar(&configFile, "config", "members.yml", "Path to members configuration file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
