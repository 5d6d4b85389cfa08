package services

import (
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/logger"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
)

// MediaStorage 将文章图片保存到本地媒体目录
type MediaStorage struct {
	cfg config.MediaConfig
	now func() time.Time
}

// NewMediaStorage 创建媒体存储
func NewMediaStorage(cfg config.MediaConfig) *MediaStorage {
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = "/media"
	}
	cfg.URLPrefix = "/" + strings.Trim(cfg.URLPrefix, "/")
	return &MediaStorage{cfg: cfg, now: time.Now}
}

// Save 校验并保存上传图片，返回可直接用于 <img src> 的公开路径
func (m *MediaStorage) Save(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", fmt.Errorf("%w: 未选择文件", ErrInvalidImage)
	}
	if m.cfg.MaxSize > 0 && file.Size > m.cfg.MaxSize {
		return "", fmt.Errorf("%w: 文件大小超过限制（最大 %d MB）", ErrInvalidImage, m.cfg.MaxSize/1024/1024)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(m.cfg.AllowedExtensions) > 0 && (ext == "" || !isAllowedExtension(ext, m.cfg.AllowedExtensions)) {
		return "", fmt.Errorf("%w: 文件扩展名不被允许: %s", ErrInvalidImage, ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 读取文件头部识别 MIME 类型
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	contentType := http.DetectContentType(buffer[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: 文件不是图片", ErrInvalidImage)
	}
	if len(m.cfg.AllowedTypes) > 0 && !containsFold(m.cfg.AllowedTypes, contentType) {
		return "", fmt.Errorf("%w: 文件类型不被允许: %s", ErrInvalidImage, contentType)
	}

	// webp 不在标准库解码器内，只校验文件头
	if contentType != "image/webp" {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return "", err
		}
		if _, _, err := image.DecodeConfig(src); err != nil {
			return "", fmt.Errorf("%w: 无法解析图片", ErrInvalidImage)
		}
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	now := m.now()
	rel := path.Join("posts", now.Format("2006"), now.Format("01"), uuid.New().String()+ext)
	savePath := filepath.Join(m.cfg.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return "", err
	}

	dst, err := os.Create(savePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return m.cfg.URLPrefix + "/" + rel, nil
}

// Remove 删除 Save 返回的文件，不属于媒体目录的路径直接忽略
func (m *MediaStorage) Remove(publicPath string) error {
	localPath, ok := m.localPath(publicPath)
	if !ok {
		return nil
	}
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// discard 尽力删除，失败只记日志
func (m *MediaStorage) discard(publicPath string) {
	if publicPath == "" {
		return
	}
	if err := m.Remove(publicPath); err != nil {
		logger.Warnw("media_remove_failed", "path", publicPath, "error", err)
	}
}

func (m *MediaStorage) localPath(publicPath string) (string, bool) {
	prefix := m.cfg.URLPrefix + "/"
	if !strings.HasPrefix(publicPath, prefix) {
		return "", false
	}
	rel := path.Clean("/" + strings.TrimPrefix(publicPath, prefix))
	if rel == "/" {
		return "", false
	}
	return filepath.Join(m.cfg.Dir, filepath.FromSlash(strings.TrimPrefix(rel, "/"))), true
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if strings.EqualFold(ext, normalized) {
			return true
		}
	}
	return false
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}
