package service

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"user-role-admin/internal/domain"
)

// DefaultPageSize 用户列表每页条数
const DefaultPageSize = 15

type SortKey string

const (
	SortNone       SortKey = ""
	SortName       SortKey = "name"
	SortExpiration SortKey = "expiration"
	SortRole       SortKey = "role"
)

// SortKeys 下拉顺序
var SortKeys = []SortKey{SortName, SortExpiration, SortRole}

// ParseSortKey 也认界面上的标签（User / Expiration Date / Role）
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SortNone, nil
	case "name", "user", "account":
		return SortName, nil
	case "expiration", "expiration date", "expiration_date":
		return SortExpiration, nil
	case "role":
		return SortRole, nil
	}
	return SortNone, fmt.Errorf("unknown sort key %q", s)
}

type ViewQuery struct {
	Search   string
	Role     domain.RoleName // 空 = 全部
	Sort     SortKey
	Page     int
	PageSize int
}

type ViewPage struct {
	Items      []domain.User `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}

// FilterSort 搜索 -> 角色过滤 -> 稳定排序，不改入参
func FilterSort(users []domain.User, q ViewQuery) []domain.User {
	needle := strings.ToLower(q.Search)
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if needle != "" && !strings.Contains(strings.ToLower(u.Name), needle) {
			continue
		}
		if q.Role != "" && u.Role != q.Role {
			continue
		}
		out = append(out, u)
	}

	switch q.Sort {
	case SortName:
		col := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b domain.User) int { return col.CompareString(a.Name, b.Name) })
	case SortRole:
		col := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b domain.User) int { return col.CompareString(string(a.Role), string(b.Role)) })
	case SortExpiration:
		slices.SortStableFunc(out, func(a, b domain.User) int { return a.Expiration.Compare(b.Expiration) })
	}
	return out
}

// Paginate 返回第 page 页；page 会被夹到 [1, max(totalPages,1)]
func Paginate[T any](items []T, page, size int) (slice []T, clamped, totalPages int) {
	if size < 1 {
		size = DefaultPageSize
	}
	totalPages = (len(items) + size - 1) / size
	clamped = ClampPage(page, totalPages)
	start := (clamped - 1) * size
	if start >= len(items) {
		return []T{}, clamped, totalPages
	}
	end := min(start+size, len(items))
	return items[start:end], clamped, totalPages
}

func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// ApplyView 纯函数：同样的输入总得到同样的页
func ApplyView(users []domain.User, q ViewQuery) ViewPage {
	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	filtered := FilterSort(users, q)
	items, page, pages := Paginate(filtered, q.Page, size)
	return ViewPage{
		Items:      slices.Clone(items),
		Total:      len(filtered),
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
	}
}
