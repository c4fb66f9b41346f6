package handler

import (
	"lumina/internal/pkg/response"
	"lumina/internal/service"

	"github.com/gin-gonic/gin"
)

type BenchmarkHandler struct {
	benchmarkSvc service.BenchmarkService
}

func NewBenchmarkHandler(benchmarkSvc service.BenchmarkService) *BenchmarkHandler {
	return &BenchmarkHandler{benchmarkSvc: benchmarkSvc}
}

func (s *BenchmarkHandler) Generate(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	benchmark, err := s.benchmarkSvc.GenerateBenchmark(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, benchmark)
}

func (s *BenchmarkHandler) GetLatest(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	category := c.Query("category")
	benchmark, err := s.benchmarkSvc.GetLatestBenchmark(c.Request.Context(), accountID, category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, benchmark)
}
