package renderer

import "github.com/ByLCY/fontthumb/raster"

// Rasterizer 将已注册字体族中的文本渲染为缩略图。
// RegisterFamily 把字体二进制注册为可渲染的字体族；Render 返回裁切并归一化高度后的图像。
// Reset 清空全部已注册字体族，新的批次开始前调用。
type Rasterizer interface {
	RegisterFamily(id string, data []byte) error
	HasFamily(id string) bool
	Render(family, text string) (*raster.Raster, error)
	Reset()
}
