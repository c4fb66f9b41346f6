package stats

import (
	"math"
	"sort"
)

// DefaultOutlierThreshold 离群值判定阈值（标准差倍数）
const DefaultOutlierThreshold = 2.5

// minOutlierSamples 样本少于该数量时不做离群值剔除
const minOutlierSamples = 4

// zScore95 95% 置信区间对应的 z 值
const zScore95 = 1.96

// Metrics 描述性统计结果
type Metrics struct {
	Mean               float64            `json:"mean"`
	Median             float64            `json:"median"`
	StandardDeviation  float64            `json:"standardDeviation"`
	ConfidenceInterval ConfidenceInterval `json:"confidenceInterval"`
	Quartiles          Quartiles          `json:"quartiles"`
}

type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

type Quartiles struct {
	Q1 float64 `json:"q1"`
	Q2 float64 `json:"q2"`
	Q3 float64 `json:"q3"`
}

// Describe 计算描述性统计，空输入返回零值结构体而不报错
func Describe(values []float64) Metrics {
	if len(values) == 0 {
		return Metrics{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := Mean(values)
	median := sorted[len(sorted)/2]
	std := stdDev(values, mean)

	marginOfError := zScore95 * (std / math.Sqrt(float64(len(values))))

	return Metrics{
		Mean:              mean,
		Median:            median,
		StandardDeviation: std,
		ConfidenceInterval: ConfidenceInterval{
			Lower: mean - marginOfError,
			Upper: mean + marginOfError,
		},
		Quartiles: Quartiles{
			Q1: sorted[len(sorted)/4],
			Q2: sorted[len(sorted)/2],
			Q3: sorted[len(sorted)*3/4],
		},
	}
}

// Mean 算术平均，空输入返回 0
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

// Correlation Pearson 相关系数，分母为 0 时返回 0
func Correlation(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return 0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
		sumY2 += ys[i] * ys[i]
	}

	fn := float64(n)
	numerator := fn*sumXY - sumX*sumY
	denominator := math.Sqrt((fn*sumX2 - sumX*sumX) * (fn*sumY2 - sumY*sumY))
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// Autocorrelation 指定滞后阶的自相关
func Autocorrelation(values []float64, lag int) float64 {
	n := len(values)
	if lag <= 0 || lag >= n {
		return 0
	}
	var sum float64
	for i := 0; i < n-lag; i++ {
		sum += values[i] * values[i+lag]
	}
	return sum / float64(n-lag)
}

// Seasonality 对去均值序列取 1..n/2 各滞后阶自相关绝对值的最大值
func Seasonality(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := Mean(values)
	centered := make([]float64, len(values))
	for i, v := range values {
		centered[i] = v - mean
	}

	var maxCorrelation float64
	for lag := 1; lag <= len(values)/2; lag++ {
		if c := math.Abs(Autocorrelation(centered, lag)); c > maxCorrelation {
			maxCorrelation = c
		}
	}
	return maxCorrelation
}

// LinearProjection 以下标为自变量做最小二乘回归，外推 stepsAhead 步
func LinearProjection(series []float64, stepsAhead int) float64 {
	n := len(series)
	if n == 0 {
		return 0
	}

	slope, intercept := leastSquares(series)
	return intercept + slope*float64(n+stepsAhead)
}

// RSquared 线性拟合优度，作为外推置信度
func RSquared(series []float64) float64 {
	n := len(series)
	if n < 2 {
		return 0
	}

	mean := Mean(series)
	slope, intercept := leastSquares(series)

	var totalSS, residualSS float64
	for i, v := range series {
		predicted := intercept + slope*float64(i)
		totalSS += (v - mean) * (v - mean)
		residualSS += (v - predicted) * (v - predicted)
	}
	if totalSS == 0 {
		return 0
	}
	return 1 - residualSS/totalSS
}

func leastSquares(series []float64) (slope, intercept float64) {
	n := float64(len(series))
	var sumX, sumY, sumXY, sumX2 float64
	for i, v := range series {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// RemoveOutliers 剔除 keyFn 取值偏离均值超过 threshold 个标准差的元素
// 少于 4 个元素时原样返回
func RemoveOutliers[T any](items []T, keyFn func(T) float64, threshold float64) []T {
	if len(items) < minOutlierSamples {
		return items
	}

	values := make([]float64, len(items))
	for i, item := range items {
		values[i] = keyFn(item)
	}
	mean := Mean(values)
	std := stdDev(values, mean)

	kept := make([]T, 0, len(items))
	for i, item := range items {
		if math.Abs(values[i]-mean) <= threshold*std {
			kept = append(kept, item)
		}
	}
	return kept
}
