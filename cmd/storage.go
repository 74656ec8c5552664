package cmd

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"Articulate/core/recording"
	"Articulate/storage"

	"github.com/spf13/cobra"
)

var (
	storagePrefix string
	storageOwner  string
	storageStats  bool
	storageUsage  bool
	storageCheck  bool
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "录音存储桶管理",
	Long:  `检查录音存储桶是否存在，列出前缀下的对象，查看统计信息和按类型的占用。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("存储配置: %s, Bucket: %s\n", cfg.S3Endpoint, cfg.S3Bucket)

		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			log.Fatalf("创建存储客户端失败: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		prefix := storagePrefix
		if storageOwner != "" {
			prefix = recording.OwnerPrefix(storageOwner)
		}

		switch {
		case storageCheck:
			if err := store.EnsureBucket(ctx); err != nil {
				log.Fatalf("存储桶检查失败: %v", err)
			}
			fmt.Printf("存储桶 %s 可用\n", store.Bucket())
		case storageUsage:
			usage, err := store.Usage(ctx, prefix)
			if err != nil {
				log.Fatalf("统计占用失败: %v", err)
			}
			kinds := make([]string, 0, len(usage))
			for k := range usage {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			fmt.Printf("\n按类型统计 (前缀: %s):\n", prefix)
			for _, k := range kinds {
				fmt.Printf("  %-6s %s\n", k, storage.FormatSize(usage[k]))
			}
		default:
			objects, stats, err := store.ListObjects(ctx, prefix)
			if err != nil {
				log.Fatalf("列出文件失败: %v", err)
			}
			if !storageStats {
				fmt.Printf("\n列出存储桶中的文件 (前缀: %s)...\n", prefix)
				for _, obj := range objects {
					fmt.Printf("  %s  %10s  %s\n",
						obj.LastModified.Format("2006-01-02 15:04:05"), storage.FormatSize(obj.Size), obj.Key)
				}
			}
			fmt.Printf("\n总文件数: %d\n", stats.TotalObjects)
			fmt.Printf("总大小: %s\n", storage.FormatSize(stats.TotalSize))
			if !stats.LastModified.IsZero() {
				fmt.Printf("最后修改时间: %s\n", stats.LastModified.Format("2006-01-02 15:04:05"))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)

	storageCmd.Flags().StringVarP(&storagePrefix, "prefix", "p", "recordings/", "按前缀过滤对象")
	storageCmd.Flags().StringVarP(&storageOwner, "owner", "o", "", "只看某个 owner 的录音（覆盖 --prefix）")
	storageCmd.Flags().BoolVarP(&storageStats, "stats", "s", false, "只显示统计信息")
	storageCmd.Flags().BoolVarP(&storageUsage, "usage", "u", false, "按文件类型统计占用")
	storageCmd.Flags().BoolVarP(&storageCheck, "check", "c", false, "检查存储桶是否存在，不存在则创建")

	storageCmd.Example = `  # 列出所有录音
  articulate storage

  # 某个用户的录音统计
  articulate storage -o 2f0c7c1e-owner -s

  # 按类型统计占用
  articulate storage -u`
}
