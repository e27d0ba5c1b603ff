package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/qs3c/account_go_server/config"
	"github.com/qs3c/account_go_server/internal/database"
	"github.com/qs3c/account_go_server/internal/pkg/avatar"
	"github.com/qs3c/account_go_server/internal/repository"
)

var (
	dryRun = flag.Bool("dry-run", true, "Dry run mode, don't actually delete files")
	minAge = flag.Duration("min-age", 24*time.Hour, "Only delete orphaned avatars older than this")
)

// 清理本地头像目录中没有任何用户引用的文件。
// 头像记录更新失败或进程中途退出时会留下这类文件。
func main() {
	flag.Parse()

	log.Println("Starting avatar cleanup...")
	log.Printf("Mode: dry-run=%v, min-age=%s", *dryRun, *minAge)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 连接数据库
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	store := avatar.NewLocalStore(cfg.Avatar.PublicDir, cfg.Avatar.Folder)
	userRepo := repository.NewUserRepository(db)
	referenced, err := userRepo.ListLocalAvatars(context.Background(), store.LocalPrefix())
	if err != nil {
		log.Fatalf("Failed to list avatars: %v", err)
	}

	dir := filepath.Join(cfg.Avatar.PublicDir, cfg.Avatar.Folder)
	orphans, err := findOrphans(dir, cfg.Avatar.Folder, referenced, time.Now().Add(-*minAge))
	if err != nil {
		log.Fatalf("Failed to scan avatar dir: %v", err)
	}

	var freed int64
	deleted := 0
	for _, o := range orphans {
		log.Printf("  - %s (%s, %s old)", o.name, formatSize(o.size), time.Since(o.modTime).Round(time.Minute))
		if *dryRun {
			freed += o.size
			deleted++
			continue
		}
		if err := os.Remove(filepath.Join(dir, o.name)); err != nil {
			log.Printf("    Failed to delete: %v", err)
			continue
		}
		freed += o.size
		deleted++
	}

	log.Println(strings.Repeat("=", 60))
	log.Printf("Referenced avatars: %d", len(referenced))
	log.Printf("Orphaned files: %d", deleted)
	log.Printf("Freed space: %s", formatSize(freed))
	if *dryRun {
		log.Println("DRY RUN MODE - No files were actually deleted")
		log.Println("Run with -dry-run=false to actually delete files")
	}
	log.Println(strings.Repeat("=", 60))
}

type orphan struct {
	name    string
	size    int64
	modTime time.Time
}

// findOrphans 返回 dir 下未被引用、且修改时间早于 before 的文件
func findOrphans(dir, folder string, referenced []string, before time.Time) ([]orphan, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	inUse := make(map[string]bool, len(referenced))
	for _, ref := range referenced {
		inUse[ref] = true
	}

	var orphans []orphan
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if inUse[path.Join(folder, entry.Name())] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		// 刚上传、记录还没来得及更新的文件不动
		if info.ModTime().After(before) {
			continue
		}
		orphans = append(orphans, orphan{name: entry.Name(), size: info.Size(), modTime: info.ModTime()})
	}
	return orphans, nil
}

// formatSize 格式化文件大小
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
