package util

import (
	"errors"
	"fmt"
)

var (
	ErrExamConfigNotFound = errors.New("exam config not found")
	ErrConceptNotFound    = errors.New("concept parameters not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidCredential  = errors.New("invalid admin credential")
)

// ConfigurationError 概念参数不自洽（如 slip+guess >= 1）。对本次更新是致命的，
// 绝不静默钳制。
type ConfigurationError struct {
	ConceptID string
	Detail    string
}

func (e *ConfigurationError) Error() string {
	if e.ConceptID == "" {
		return "configuration error: " + e.Detail
	}
	return fmt.Sprintf("configuration error for concept %s: %s", e.ConceptID, e.Detail)
}

// ValidationError 输入越界或不一致，在任何状态变更前拒绝。
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Detail)
}

// DependencyTimeoutError 依赖存储超时。读路径就地降级（安全默认值 + 指标），
// 不作为请求失败向外抛；写路径没有安全兜底，超时作为此错误向调用方暴露。
type DependencyTimeoutError struct {
	Dependency string
	Cause      error
}

func (e *DependencyTimeoutError) Error() string {
	return fmt.Sprintf("dependency %s timed out: %v", e.Dependency, e.Cause)
}

func (e *DependencyTimeoutError) Unwrap() error { return e.Cause }

// DegenerateCalibrationError 标定输入退化（单一类别标签），温度无定义，不落库。
type DegenerateCalibrationError struct {
	Detail string
}

func (e *DegenerateCalibrationError) Error() string {
	return "degenerate calibration input: " + e.Detail
}

func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsDependencyTimeout(err error) bool {
	var te *DependencyTimeoutError
	return errors.As(err, &te)
}

func IsDegenerateCalibration(err error) bool {
	var de *DegenerateCalibrationError
	return errors.As(err, &de)
}
