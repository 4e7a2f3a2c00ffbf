package canvasrenderer

// 画布以毫米为单位，按每毫米 1 像素栅格化，因此 1 单位 = 1 像素。
// 字体面需要 pt，在边界做 px↔pt 换算。
const (
	PtToPx = 0.352777
	PxToPt = 1.0 / PtToPx
)

// toPt 将像素转换为点(pt)。
func toPt(px float64) float64 { return px * PxToPt }
