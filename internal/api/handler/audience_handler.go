package handler

import (
	"lumina/internal/pkg/response"
	"lumina/internal/service"

	"github.com/gin-gonic/gin"
)

type AudienceHandler struct {
	audienceSvc service.AudienceService
}

func NewAudienceHandler(audienceSvc service.AudienceService) *AudienceHandler {
	return &AudienceHandler{audienceSvc: audienceSvc}
}

func (s *AudienceHandler) Analyze(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	analysis, err := s.audienceSvc.AnalyzeAudience(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, analysis)
}

func (s *AudienceHandler) GetLatest(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	analysis, err := s.audienceSvc.GetLatestAnalysis(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, analysis)
}
