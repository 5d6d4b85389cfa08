package utils

import (
	"strconv"
	"strings"
)

// ParseID 解析路径中的正整数 ID
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
