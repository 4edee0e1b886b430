package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListRuns 批量运行记录
// GET /api/runs?limit=50
func (h *Handler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit 无效"})
		return
	}

	runs, err := h.store.ListBatchRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取运行记录失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": len(runs)})
}
