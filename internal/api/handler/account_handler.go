package handler

import (
	"lumina/internal/api/dto"
	"lumina/internal/pkg/response"
	"lumina/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type AccountHandler struct {
	syncSvc service.SyncService
}

func NewAccountHandler(syncSvc service.SyncService) *AccountHandler {
	return &AccountHandler{syncSvc: syncSvc}
}

func (s *AccountHandler) Register(c *gin.Context) {
	var registerDTO dto.RegisterAccountDTO
	if err := c.ShouldBind(&registerDTO); err != nil {
		response.Error(c, err)
		return
	}

	account, err := s.syncSvc.RegisterAccount(c.Request.Context(), registerDTO.Handle)
	if err != nil {
		response.Error(c, err)
		return
	}

	var accountDTO dto.AccountDTO
	_ = copier.Copy(&accountDTO, account)
	response.Success(c, accountDTO)
}

func (s *AccountHandler) GetAccount(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	account, err := s.syncSvc.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var accountDTO dto.AccountDTO
	_ = copier.Copy(&accountDTO, account)
	response.Success(c, accountDTO)
}

// TriggerSync 仅入队，真正的同步由定时任务消费脏集合
func (s *AccountHandler) TriggerSync(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if _, err = s.syncSvc.GetAccount(c.Request.Context(), accountID); err != nil {
		response.Error(c, err)
		return
	}
	if err = s.syncSvc.EnqueueSync(c.Request.Context(), accountID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *AccountHandler) GetChangeRecords(c *gin.Context) {
	accountID, err := parseAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, offset := getPagination(c)
	records, err := s.syncSvc.GetChangeRecords(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	recordDTOs := make([]dto.ChangeRecordDTO, 0, len(records))
	for _, record := range records {
		var recordDTO dto.ChangeRecordDTO
		_ = copier.Copy(&recordDTO, record)
		recordDTOs = append(recordDTOs, recordDTO)
	}
	response.Success(c, recordDTOs)
}

func parseAccountID(c *gin.Context) (uint64, error) {
	accountIDStr := c.Param("account_id")
	if accountIDStr == "" {
		return 0, service.ErrParamInvalid
	}
	accountID, err := strconv.ParseUint(accountIDStr, 10, 64)
	if err != nil {
		return 0, service.ErrParamInvalid
	}
	return accountID, nil
}

func getPagination(c *gin.Context) (int64, int64) {
	limitStr := c.DefaultQuery("limit", "20")
	offsetStr := c.DefaultQuery("offset", "0")

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}
	offset, err := strconv.ParseInt(offsetStr, 10, 64)
	if err != nil {
		offset = 0
	}
	return limit, offset
}
