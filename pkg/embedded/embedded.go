// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包提供包装函数，让其他包可以访问嵌入的资源。
//
// 使用前必须调用 Init() 初始化；未初始化时自动降级为
// 直接读取本地文件系统（便于测试和命令行工具）。
package embedded

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	dataFS      embed.FS
	initialized bool
)

// Init 初始化 embed.FS 变量
// 必须在 main() 开始时、任何目录加载之前调用
func Init(data embed.FS) {
	dataFS = data
	initialized = true
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// ReadFile 读取嵌入文件内容
// 未初始化时降级为读取本地文件系统
func ReadFile(path string) ([]byte, error) {
	path = normalize(path)
	if !initialized {
		return os.ReadFile(path)
	}
	return dataFS.ReadFile(path)
}

// Exists 检查嵌入文件是否存在
func Exists(path string) bool {
	path = normalize(path)
	if !initialized {
		_, err := os.Stat(path)
		return err == nil
	}
	f, err := dataFS.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// ReadDir 列出嵌入目录的条目
func ReadDir(path string) ([]fs.DirEntry, error) {
	path = normalize(path)
	if !initialized {
		return os.ReadDir(path)
	}
	return dataFS.ReadDir(path)
}

// Glob 按模式匹配嵌入文件路径
func Glob(pattern string) ([]string, error) {
	pattern = normalize(pattern)
	if !initialized {
		return filepath.Glob(pattern)
	}
	return fs.Glob(dataFS, pattern)
}

// normalize 标准化路径分隔符为正斜杠（embed.FS 使用正斜杠）
func normalize(path string) string {
	path = filepath.ToSlash(path)
	return strings.TrimPrefix(path, "./")
}
