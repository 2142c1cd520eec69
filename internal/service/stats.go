package service

import (
	"math"

	"planbench/internal/model"
)

// ComputePlannerRates 各 planner 的求解率与 Wilson 95% 区间，并对每对 planner 做双比例 z 检验。
// 只统计非黑名单的实验
func ComputePlannerRates(status StatusReport) (map[string]model.Rate, map[string]model.ZTest) {
	rates := map[string]model.Rate{}
	for _, ps := range status.ByPlanner {
		rates[ps.Planner] = calcRate(ps.Solved, ps.Effective)
	}

	tests := map[string]model.ZTest{}
	for i := 0; i < len(status.ByPlanner); i++ {
		for j := i + 1; j < len(status.ByPlanner); j++ {
			a, b := status.ByPlanner[i], status.ByPlanner[j]
			if a.Effective == 0 || b.Effective == 0 {
				continue
			}
			p, z := twoPropZTest(a.Solved, a.Effective, b.Solved, b.Effective)
			tests[b.Planner+"_vs_"+a.Planner] = model.ZTest{PValue: p, Z: z}
		}
	}
	return rates, tests
}

func calcRate(solved, n int) model.Rate {
	r := model.Rate{N: n, Solved: solved}
	if n > 0 {
		r.Rate = float64(solved) / float64(n)
		r.CI95Low, r.CI95High = wilsonCI(solved, n, 1.96)
	}
	return r
}

// Wilson score interval for proportion
func wilsonCI(k int, n int, z float64) (float64, float64) {
	if n == 0 {
		return 0, 0
	}
	p := float64(k) / float64(n)
	zz := z * z
	den := 1 + zz/float64(n)
	center := (p + zz/(2*float64(n))) / den
	half := (z / den) * math.Sqrt((p*(1-p)+zz/(4*float64(n)))/float64(n))
	return math.Max(0, center-half), math.Min(1, center+half)
}

// two-proportion z-test (two-sided)；z > 0 表示第二组比例更高
func twoPropZTest(x1, n1, x2, n2 int) (pValue float64, z float64) {
	if n1 == 0 || n2 == 0 {
		return 1, 0
	}
	p1 := float64(x1) / float64(n1)
	p2 := float64(x2) / float64(n2)
	p := float64(x1+x2) / float64(n1+n2)
	se := math.Sqrt(p * (1 - p) * (1/float64(n1) + 1/float64(n2)))
	if se == 0 {
		return 1, 0
	}
	z = (p2 - p1) / se
	pValue = 2 * (1 - normCDF(math.Abs(z)))
	return pValue, z
}

func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
