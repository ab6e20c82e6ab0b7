package utils

import (
	"time"
)

// ReputationTier 根据声望返回等级名称和图标
func ReputationTier(reputation int) (name string, icon string) {
	switch {
	case reputation >= 10000:
		return "luminary", "🌟"
	case reputation >= 2000:
		return "expert", "🔬"
	case reputation >= 500:
		return "contributor", "🧪"
	case reputation >= 50:
		return "apprentice", "📘"
	default:
		return "newcomer", "🌱"
	}
}

// DaysSinceJoined 计算注册天数
func DaysSinceJoined(createdAt time.Time) int {
	return int(time.Since(createdAt).Hours() / 24)
}
