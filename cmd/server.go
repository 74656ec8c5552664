package cmd

import (
	"Articulate/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动Articulate服务器",
	Long:  `启动HTTP API服务器：连接数据库、对象存储和可选的Redis，收到SIGINT/SIGTERM后优雅退出`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
