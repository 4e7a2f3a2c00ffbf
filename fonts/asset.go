// Package fonts 负责接收字体文件并生成 FontAsset。
package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Asset is a font binary accepted for rendering. Family is the filename
// without its final extension and is used as the registered family name.
type Asset struct {
	Filename string
	Binary   []byte
	Family   string
}

// NewAsset 根据文件名与字节内容创建字体资源。
func NewAsset(filename string, data []byte) Asset {
	return Asset{
		Filename: filename,
		Binary:   data,
		Family:   FamilyID(filename),
	}
}

// IsFontFile 判断文件是否为可接受的字体（.ttf / .otf，不区分大小写）。
func IsFontFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".ttf") || strings.HasSuffix(lower, ".otf")
}

// FamilyID 返回去掉最后一个扩展名后的文件名主干。
func FamilyID(filename string) string {
	base := filepath.Base(filename)
	if dot := strings.LastIndex(base, "."); dot > 0 {
		return base[:dot]
	}
	return base
}

// Filter 按原有顺序保留字体文件，其余静默丢弃。
func Filter(assets []Asset) []Asset {
	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		if IsFontFile(a.Filename) {
			out = append(out, a)
		}
	}
	return out
}

// Collect reads every .ttf/.otf file directly inside dir, sorted by name.
func Collect(dir string) ([]Asset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("读取字体目录 %s 失败: %w", dir, err)
	}
	candidates := make([]Asset, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			candidates = append(candidates, NewAsset(e.Name(), nil))
		}
	}
	assets := Filter(candidates)
	sort.Slice(assets, func(i, j int) bool { return assets[i].Filename < assets[j].Filename })

	for i := range assets {
		data, err := os.ReadFile(filepath.Join(dir, assets[i].Filename))
		if err != nil {
			return nil, fmt.Errorf("读取字体 %s 失败: %w", assets[i].Filename, err)
		}
		assets[i].Binary = data
	}
	return assets, nil
}
