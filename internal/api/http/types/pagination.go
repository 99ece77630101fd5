// Package types provides HTTP pagination type definitions.
package types

// PaginationRequest 分页请求参数
//
// 注册记录列表按Mint地址字典序稳定排序，分页在排序后的全量结果上切片，
// 同一数据集下翻页结果可复现。
type PaginationRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`             // 页码（从1开始）
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100"` // 每页数量（最大100）
}

// Normalize 将未设置的参数填充为默认值
func (p *PaginationRequest) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

// Offset 计算偏移量
func (p *PaginationRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit 返回限制数量
func (p *PaginationRequest) Limit() int {
	return p.PageSize
}

// PaginationMeta 分页元数据
type PaginationMeta struct {
	Page       int   `json:"page"`       // 当前页码
	PageSize   int   `json:"pageSize"`   // 每页数量
	TotalItems int64 `json:"totalItems"` // 总条目数
	TotalPages int   `json:"totalPages"` // 总页数
	HasNext    bool  `json:"hasNext"`    // 是否有下一页
	HasPrev    bool  `json:"hasPrev"`    // 是否有上一页
}

// NewPaginationMeta 创建分页元数据
func NewPaginationMeta(page, pageSize int, totalItems int64) PaginationMeta {
	totalPages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
