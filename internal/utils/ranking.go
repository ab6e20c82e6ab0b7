package utils

import (
	"math"
	"time"
)

type RankConfig struct {
	Gravity       float64 // 时间重力 (1.5)
	WeightAnswer  float64 // 3.0
	WeightComment float64 // 2.0
	WeightVote    float64 // 0.1，投票分值本身已放大 (upvote=10)
	ScaleFactor   float64 // 放大系数 (100)
}

var DefaultConfig = RankConfig{
	Gravity:       1.5,
	WeightAnswer:  3.0,
	WeightComment: 2.0,
	WeightVote:    0.1,
	ScaleFactor:   100.0, // 让分数落在 0-100 区间，像"温度"
}

// CalculateHotScore ranks a thread by recent interaction.
// voteCount is the net ledger sum, so downvotes already pull it down.
func CalculateHotScore(createdAt time.Time, voteCount, answers, comments int) float64 {
	hours := time.Since(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}

	// 1. 加权互动值
	weightedSum := (float64(voteCount) * DefaultConfig.WeightVote) +
		(float64(answers) * DefaultConfig.WeightAnswer) +
		(float64(comments) * DefaultConfig.WeightComment)

	// 2. 防止负数无法取对数
	if weightedSum < 0 {
		weightedSum = 0
	}

	// 3. 对数平滑，sum=0 时结果为 0
	logScore := math.Log10(weightedSum + 1)

	numerator := logScore * DefaultConfig.ScaleFactor

	// 4. 时间衰减
	decay := math.Pow(hours+2, DefaultConfig.Gravity)

	return numerator / decay
}
