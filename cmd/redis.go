package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"Articulate/cache"
	"Articulate/db"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis连接测试",
	Long:  `测试Redis连接是否成功，进行基本读写操作，并验证作用域锁能获取和释放。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始测试Redis连接...")
		fmt.Printf("Redis配置: %s, DB: %d\n", cfg.RedisAddr(), cfg.RedisDB)

		// 连接Redis
		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("无法连接到Redis: %v", err)
		}
		fmt.Println("Redis连接成功！")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// 测试Redis基本操作
		fmt.Println("开始测试Redis基本操作...")
		if err := db.TestRedis(ctx); err != nil {
			log.Fatalf("Redis操作测试失败: %v", err)
		}
		fmt.Println("Redis基本操作测试成功！")

		unlock, err := cache.NewScopeLock(db.Redis()).Lock(ctx, "articulate:set-index:healthcheck")
		if err != nil {
			log.Fatalf("作用域锁测试失败: %v", err)
		}
		unlock()
		fmt.Println("作用域锁测试成功！")

		// 关闭连接
		if err := db.CloseRedis(); err != nil {
			log.Printf("关闭Redis连接时发生错误: %v", err)
		}
		fmt.Println("Redis测试完成，连接已关闭。")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
