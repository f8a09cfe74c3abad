package scenario

import "errors"

var (
	// 日志ID不存在
	ErrNotFound = errors.New("log record not found")
	// 日志记录无法解码或缺少必需字段
	ErrCorruptRecord = errors.New("corrupt log record")
	// 轨迹采样点不足两个，无法估计初速度
	ErrInsufficientTrajectory = errors.New("insufficient trajectory samples")
	// 日志中没有自车轨迹
	ErrMissingEgoTrack = errors.New("missing ego track")
	// 种子超出可选日志范围
	ErrSeedOutOfRange = errors.New("seed out of range")
)
