package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kamino-labs/kamino-portal/internal/listview"
	"github.com/kamino-labs/kamino-portal/internal/models"
)

// parseListQuery 解析列表查询参数
// search/sortBy/desc/page/pageSize，pageSize 只允许 10/25/50
func parseListQuery(c *gin.Context) (listview.Query, error) {
	q := listview.Query{
		Search:   c.Query("search"),
		Page:     1,
		PageSize: models.ValidPageSizes[0],
	}

	if sortBy := c.Query("sortBy"); sortBy != "" {
		q.Sorting = []listview.SortState{{
			Column: sortBy,
			Desc:   c.Query("desc") == "true",
		}}
	}

	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return q, fmt.Errorf("无效的页码: %s", pageStr)
		}
		q.Page = page
	}

	if sizeStr := c.Query("pageSize"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || !models.IsValidPageSize(size) {
			return q, fmt.Errorf("无效的分页大小: %s，允许值为 10/25/50", sizeStr)
		}
		q.PageSize = size
	}

	return q, nil
}

// namesRequest 批量操作的通用请求体
type namesRequest struct {
	Names []string `json:"names" binding:"required"`
}
