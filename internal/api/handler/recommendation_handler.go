package handler

import (
	"lumina/internal/api/dto"
	"lumina/internal/model"
	"lumina/internal/pkg/response"
	"lumina/internal/service"

	"github.com/gin-gonic/gin"
)

type RecommendationHandler struct {
	recommendationSvc service.RecommendationService
}

func NewRecommendationHandler(recommendationSvc service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationSvc: recommendationSvc}
}

func (s *RecommendationHandler) Generate(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	recommendations, err := s.recommendationSvc.GenerateRecommendations(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toRecommendationDTOs(recommendations))
}

func (s *RecommendationHandler) List(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	priority := c.Query("priority")
	recommendations, err := s.recommendationSvc.ListRecommendations(c.Request.Context(), accountID, priority)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toRecommendationDTOs(recommendations))
}

func toRecommendationDTOs(recommendations []*model.Recommendation) []dto.RecommendationDTO {
	recommendationDTOs := make([]dto.RecommendationDTO, 0, len(recommendations))
	for _, recommendation := range recommendations {
		recommendationDTOs = append(recommendationDTOs, dto.RecommendationDTO{
			Type:        recommendation.Type,
			Priority:    recommendation.Payload.Priority,
			Title:       recommendation.Payload.Title,
			Description: recommendation.Payload.Description,
			ActionItems: recommendation.Payload.ActionItems,
			CreatedAt:   recommendation.CreatedAt,
		})
	}
	return recommendationDTOs
}
