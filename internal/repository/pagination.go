package repository

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// DefaultPageSize 列表页每页文章数
const DefaultPageSize = 10

// Pagination 分页信息。越界页码收敛到最近的有效页，三个列表页行为一致。
type Pagination struct {
	Number   int
	PageSize int
	Total    int64
	NumPages int
}

// NewPagination 根据总数与请求页码计算分页
func NewPagination(total int64, pageSize, requested int) Pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	numPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if numPages < 1 {
		numPages = 1
	}
	page := requested
	if page < 1 {
		page = 1
	}
	if page > numPages {
		page = numPages
	}
	return Pagination{
		Number:   page,
		PageSize: pageSize,
		Total:    total,
		NumPages: numPages,
	}
}

// ParsePage 解析 ?page= 参数，非法值视为第 1 页；超出 int 范围的正数视为最大页码
func ParsePage(raw string) int {
	raw = strings.TrimSpace(raw)
	page, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return math.MaxInt
	}
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Offset 查询偏移量
func (p Pagination) Offset() int {
	return (p.Number - 1) * p.PageSize
}

func (p Pagination) HasPrevious() bool {
	return p.Number > 1
}

func (p Pagination) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Pagination) HasOtherPages() bool {
	return p.NumPages > 1
}

func (p Pagination) PreviousNumber() int {
	if p.HasPrevious() {
		return p.Number - 1
	}
	return p.Number
}

func (p Pagination) NextNumber() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.Number
}
