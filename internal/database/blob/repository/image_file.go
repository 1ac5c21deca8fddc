package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"imagegate/config"
	"imagegate/internal/telemetry"
	"imagegate/utils/path"

	"go.uber.org/zap"
)

var ErrBlobNotFound = errors.New("blob not found")

// ImageFileRepository 將 PNG 以 <id>.png 存放於 STORAGE__IMAGES_PATH
type ImageFileRepository struct {
	trace   *telemetry.Trace
	logger  *zap.Logger
	baseDir string
}

func NewImageFileRepository(trace *telemetry.Trace, logger *zap.Logger, config *config.Configuration) (*ImageFileRepository, error) {
	baseDir := path.Resolve(path.RootPath(), config.Storage.ImagesPath)
	if err := path.EnsureDir(baseDir); err != nil {
		return nil, fmt.Errorf("create images dir %s: %w", baseDir, err)
	}
	logger.Info("image storage ready", zap.String("path", baseDir))
	return &ImageFileRepository{trace: trace, logger: logger, baseDir: baseDir}, nil
}

// FileName 圖片 id 對應的檔名
func FileName(imageID string) string {
	return imageID + ".png"
}

// Save 寫入檔案；先寫暫存檔再 rename，避免讀到寫一半的內容
func (repository *ImageFileRepository) Save(contextValue context.Context, imageID string, data []byte) (returnedError error) {
	_, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	target := repository.pathOf(imageID)
	tmp, createError := os.CreateTemp(repository.baseDir, filepath.Base(target)+".*.tmp")
	if createError != nil {
		return createError
	}
	if _, writeError := tmp.Write(data); writeError != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return writeError
	}
	if closeError := tmp.Close(); closeError != nil {
		os.Remove(tmp.Name())
		return closeError
	}
	return os.Rename(tmp.Name(), target)
}

// Load 讀取檔案；不存在時回傳 ErrBlobNotFound
func (repository *ImageFileRepository) Load(contextValue context.Context, imageID string) (_ []byte, returnedError error) {
	_, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	data, readError := os.ReadFile(repository.pathOf(imageID))
	if errors.Is(readError, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return data, readError
}

// Delete 刪除檔案；不存在視為成功
func (repository *ImageFileRepository) Delete(contextValue context.Context, imageID string) (returnedError error) {
	_, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	if removeError := os.Remove(repository.pathOf(imageID)); removeError != nil && !errors.Is(removeError, os.ErrNotExist) {
		return removeError
	}
	return nil
}

func (repository *ImageFileRepository) pathOf(imageID string) string {
	// 只取 base name，避免 id 夾帶路徑
	return filepath.Join(repository.baseDir, filepath.Base(FileName(imageID)))
}
