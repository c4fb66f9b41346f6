package service

import (
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	UnprocessableEntity = 422
	InternalServerError = 500
)

var (
	ErrParamInvalid       = errors.New("参数错误")
	ErrAccountNotFound    = errors.New("账号不存在")
	ErrAccountExist       = errors.New("账号已存在")
	ErrHandleMissing      = errors.New("账号标识不能为空")
	ErrTimeframeInvalid   = errors.New("时间范围无效")
	ErrInsufficientData   = errors.New("数据量不足，无法分析")
	ErrAllSyncTasksFailed = errors.New("全部同步子任务失败")
	ErrSyncInProgress     = errors.New("同步进行中，请稍后重试")
	UnExpectedError       = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:       BadRequest,
	ErrAccountNotFound:    NotFound,
	ErrAccountExist:       BadRequest,
	ErrHandleMissing:      BadRequest,
	ErrTimeframeInvalid:   BadRequest,
	ErrInsufficientData:   UnprocessableEntity,
	ErrAllSyncTasksFailed: InternalServerError,
	ErrSyncInProgress:     BadRequest,
	UnExpectedError:       InternalServerError,
}
