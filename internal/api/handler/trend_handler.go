package handler

import (
	"lumina/internal/pkg/response"
	"lumina/internal/service"

	"github.com/gin-gonic/gin"
)

type TrendHandler struct {
	trendSvc service.TrendService
}

func NewTrendHandler(trendSvc service.TrendService) *TrendHandler {
	return &TrendHandler{trendSvc: trendSvc}
}

func (s *TrendHandler) Analyze(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	analysis, err := s.trendSvc.AnalyzeTrends(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, analysis)
}

func (s *TrendHandler) InvalidateCache(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.trendSvc.InvalidateCache(c.Request.Context(), accountID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
