package match

import (
	"errors"
	"fmt"
	"strings"
)

// Input/state errors: the caller's profile is unusable for the requested
// path. Detected locally, never the result of I/O.
var (
	ErrProfileMissing         = errors.New("用户画像不存在，请先提供个人信息")
	ErrProfileIncomplete      = errors.New("用户画像信息不完整，请先补充必填信息")
	ErrProfileAlreadyComplete = errors.New("您的信息已经完整，建议使用确定匹配工具获得更精确的结果")
	ErrEmptyQuery             = errors.New("用户画像中没有足够的有效信息进行匹配")
	ErrNoGuessableFields      = errors.New("缺失的字段无法进行有效猜测，请您补充更多信息")
	ErrAllCombinationsFailed  = errors.New("所有猜测组合的匹配调用都失败了，请稍后再试")
)

// IncompleteError wraps ErrProfileIncomplete with the offending field names.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("用户画像信息不完整，缺少必需字段: %s。请先补充这些信息。", strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Unwrap() error { return ErrProfileIncomplete }

// TooManyUnknownsError means the speculative fan-out was refused because the
// search space would be too large. It is raised before any network call.
type TooManyUnknownsError struct {
	Missing []string
}

func (e *TooManyUnknownsError) Error() string {
	return fmt.Sprintf(
		"您缺失的字段过多（%d个：%s），猜测匹配仅适用于缺失1-2个字段的情况。请先补充更多信息后再使用此功能。",
		len(e.Missing), strings.Join(e.Missing, ", "),
	)
}
