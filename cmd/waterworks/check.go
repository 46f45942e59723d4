package main

import (
	"context"
	"fmt"
	"io"

	"github.com/railzwaylabs/waterworks/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var checkedTables = []string{"users", "customers", "sectors", "readings", "payments"}

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Print the database version and row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var conn *gorm.DB
			return runOnce(func(ctx context.Context) error {
				return checkDatabase(ctx, conn, cmd.OutOrStdout())
			}, fx.Populate(&conn))
		},
	})
	return cmd
}

func checkDatabase(ctx context.Context, conn *gorm.DB, out io.Writer) error {
	version, err := db.ServerVersion(ctx, conn)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "database version: %s\n", version)

	counts, err := db.CountRows(ctx, conn, checkedTables...)
	if err != nil {
		return err
	}
	for _, c := range counts {
		fmt.Fprintf(out, "%-10s %d\n", c.Table, c.Rows)
	}
	return nil
}
