package handler

import (
	"lumina/internal/api/dto"
	"lumina/internal/pkg/response"
	"lumina/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type InsightHandler struct {
	insightSvc service.InsightService
}

func NewInsightHandler(insightSvc service.InsightService) *InsightHandler {
	return &InsightHandler{insightSvc: insightSvc}
}

func (s *InsightHandler) GetTopHashtags(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		limit = 20
	}

	tags, err := s.insightSvc.GetTopHashtags(c.Request.Context(), accountID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	tagDTOs := make([]dto.HashtagDTO, 0, len(tags))
	for _, tag := range tags {
		var tagDTO dto.HashtagDTO
		_ = copier.Copy(&tagDTO, tag)
		tagDTOs = append(tagDTOs, tagDTO)
	}
	response.Success(c, tagDTOs)
}

func (s *InsightHandler) GetActivityHours(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	hours, err := s.insightSvc.GetActivityHours(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, hours)
}

func (s *InsightHandler) GetDemographics(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	demographic, err := s.insightSvc.GetDemographics(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, demographic)
}
