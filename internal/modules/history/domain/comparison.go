package domain

import (
	analysis "idea-validator-app/internal/modules/analysis/domain"
)

// Comparison 2件の履歴の比較
//
// Base は比較対象として選んだ項目、Target は表示中の項目。
type Comparison struct {
	Base         HistoryItem
	Target       HistoryItem
	ScoreDelta   int
	BaseMatrix   analysis.RiskMatrix
	TargetMatrix analysis.RiskMatrix
}

// NewComparison 比較を作成（ScoreDelta = Target - Base）
func NewComparison(base, target HistoryItem) *Comparison {
	return &Comparison{
		Base:         base,
		Target:       target,
		ScoreDelta:   target.Result.ValidationScore - base.Result.ValidationScore,
		BaseMatrix:   analysis.NewRiskMatrix(base.Result.RedFlags),
		TargetMatrix: analysis.NewRiskMatrix(target.Result.RedFlags),
	}
}
