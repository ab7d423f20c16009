package file

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// HashBytes 计算内容哈希（sha256 hex）
// 同一内容无论文件名如何，摘要相同，哈希是去重组的唯一依据
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashReader 流式计算内容哈希
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to read stream: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
