package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/jhoicas/stock-ledger/docs"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "stock-ledger",
		Short:         "Libro de inventario y movimientos de stock",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
