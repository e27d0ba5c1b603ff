package cron

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/qs3c/account_go_server/internal/pkg/logger"
)

// Service 定时清理头像上传临时目录。正常请求结束时临时文件已被移走或删除，
// 这里只处理进程中途退出等情况留下的残留文件。
type Service struct {
	tempDir  string
	expire   time.Duration
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewService(tempDir string, expire time.Duration) *Service {
	if expire <= 0 {
		expire = time.Hour
	}
	return &Service{
		tempDir:  tempDir,
		expire:   expire,
		interval: time.Hour,
		stopChan: make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	s.wg.Add(1)
	go s.runCleanup()
	logger.GetLogger().Info("cron service started", "temp_dir", s.tempDir, "expire", s.expire)
}

// Stop 停止定时任务并等待正在执行的清理结束
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	logger.GetLogger().Info("cron service stopped")
}

// runCleanup 每小时执行一次
func (s *Service) runCleanup() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunNow()
		}
	}
}

// RunNow 立即清理一次，返回删除的文件数
func (s *Service) RunNow() int {
	if s.tempDir == "" {
		return 0
	}

	log := logger.GetLogger()

	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("cleanup temp uploads: failed to read dir", "dir", s.tempDir, "error", err)
		}
		return 0
	}

	cleaned := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if time.Since(info.ModTime()) > s.expire {
			path := filepath.Join(s.tempDir, entry.Name())
			if err := os.Remove(path); err != nil {
				log.Warn("cleanup temp uploads: failed to remove", "path", path, "error", err)
			} else {
				cleaned++
			}
		}
	}

	if cleaned > 0 {
		log.Info("cleanup temp uploads", "removed", cleaned)
	}
	return cleaned
}
