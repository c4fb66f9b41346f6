package handler

import (
	"lumina/internal/pkg/response"
	"lumina/internal/service"

	"github.com/gin-gonic/gin"
)

type GrowthHandler struct {
	growthSvc service.GrowthService
}

func NewGrowthHandler(growthSvc service.GrowthService) *GrowthHandler {
	return &GrowthHandler{growthSvc: growthSvc}
}

func (s *GrowthHandler) Predict(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	prediction, err := s.growthSvc.PredictGrowth(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, prediction)
}

func (s *GrowthHandler) GetLatest(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	prediction, err := s.growthSvc.GetLatestPrediction(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, prediction)
}
