package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type StatisticsController struct {
	stats StatisticsReader
}

func NewStatisticsController(stats StatisticsReader) *StatisticsController {
	return &StatisticsController{stats: stats}
}

// GetStatistics handles GET /api/statistics. Every field is always a number.
func (sc *StatisticsController) GetStatistics(c *gin.Context) {
	stats, err := sc.stats.GetStatistics()
	if err != nil {
		respondStoreError(c, err, "statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
