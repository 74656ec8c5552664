package cmd

import (
	"fmt"

	"Articulate/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建或更新数据表",
	Long:  `连接 DB_DRIVER 指定的数据库，对所有业务表执行 AutoMigrate（包括练习集编号的唯一索引）。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.ConnectGormDB(cfg); err != nil {
			return err
		}
		defer db.CloseGormDB()

		if err := db.AutoMigrateModels(); err != nil {
			return err
		}
		fmt.Printf("迁移完成: %s@%s/%s\n", cfg.DBDriver, cfg.DBHost, cfg.DBName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
