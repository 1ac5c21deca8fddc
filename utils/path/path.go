package path

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// RootPath 專案根目錄：由此檔案位置 /project/utils/path/path.go 往上兩層
func RootPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("無法取得 caller 位置")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
}

// Resolve 相對路徑以 base 為起點，絕對路徑原樣回傳
func Resolve(base string, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// EnsureDir 目錄不存在時建立；路徑已存在但不是目錄時回錯
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%s exists and is not a directory", dir)
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return os.MkdirAll(dir, 0o755)
	default:
		return err
	}
}
