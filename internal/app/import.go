package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harborlight-systems/engagewatch/internal/facts"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load an engagement facts file into the local database",
	Long: `Parse a JSON facts file (customers, activities, participations,
payments, referrals) and replace the stored snapshot with it. Structural
problems such as duplicate or dangling IDs abort the import.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if _, err := setup(); err != nil {
		return err
	}

	set, err := facts.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading facts file: %w", err)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.ReplaceFacts(set); err != nil {
		return fmt.Errorf("storing facts: %w", err)
	}

	fmt.Printf("Imported %d customers, %d activities, %d participations, %d payments, %d referrals\n",
		len(set.Customers), len(set.Activities), len(set.Participations),
		len(set.Payments), len(set.Referrals))
	return nil
}
