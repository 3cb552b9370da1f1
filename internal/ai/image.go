package ai

import (
	"encoding/base64"
	"fmt"
	"net/http"
)

// DataURL 把原始图片字节编码成 data URL，供视觉模型的 image_url 内容段使用。
// mime 为空时按字节嗅探。
func DataURL(raw []byte, mime string) string {
	if mime == "" {
		mime = http.DetectContentType(raw)
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw))
}
