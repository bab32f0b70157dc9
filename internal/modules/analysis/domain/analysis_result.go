package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Severity レッドフラグの深刻度
type Severity string

// 深刻度の種類
const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Severities 全ての深刻度（表示順）
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// IsValid 定義済みの深刻度かどうか
func (s Severity) IsValid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// RiskCategory レッドフラグのカテゴリ
type RiskCategory string

// カテゴリの種類
const (
	CategoryMarket    RiskCategory = "Market"
	CategoryFinancial RiskCategory = "Financial"
	CategoryTechnical RiskCategory = "Technical"
	CategoryExecution RiskCategory = "Execution"
)

// RiskCategories 全てのカテゴリ（表示順）
var RiskCategories = []RiskCategory{CategoryMarket, CategoryFinancial, CategoryTechnical, CategoryExecution}

// IsValid 定義済みのカテゴリかどうか
func (c RiskCategory) IsValid() bool {
	switch c {
	case CategoryMarket, CategoryFinancial, CategoryTechnical, CategoryExecution:
		return true
	}
	return false
}

// 検証スコアの範囲
const (
	MinValidationScore = 1
	MaxValidationScore = 100
)

// RedFlag アイデアのリスク指摘
type RedFlag struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Severity    Severity     `json:"severity"`
	Category    RiskCategory `json:"category"`
	Suggestion  string       `json:"suggestion"`
}

// AnalysisResult AIによるアイデア分析結果
type AnalysisResult struct {
	ValidationScore int       `json:"validationScore"`
	ScoreRationale  string    `json:"scoreRationale"`
	RedFlags        []RedFlag `json:"redFlags"`
	Summary         string    `json:"summary"`
}

// Validate 分析結果がスキーマを満たすかチェック
func (r *AnalysisResult) Validate() error {
	if r.ValidationScore < MinValidationScore || r.ValidationScore > MaxValidationScore {
		return fmt.Errorf("validationScore out of range: %d", r.ValidationScore)
	}
	if r.RedFlags == nil {
		return fmt.Errorf("redFlags is required")
	}
	for i, flag := range r.RedFlags {
		if !flag.Severity.IsValid() {
			return fmt.Errorf("redFlags[%d]: invalid severity %q", i, flag.Severity)
		}
		if !flag.Category.IsValid() {
			return fmt.Errorf("redFlags[%d]: invalid category %q", i, flag.Category)
		}
	}
	return nil
}

// FlagsBySeverity 指定した深刻度のフラグ数
func (r *AnalysisResult) FlagsBySeverity(severity Severity) int {
	count := 0
	for _, flag := range r.RedFlags {
		if flag.Severity == severity {
			count++
		}
	}
	return count
}

// rawRedFlag 必須項目の欠落を検出するためのデコード用構造体
type rawRedFlag struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Severity    *string `json:"severity"`
	Category    *string `json:"category"`
	Suggestion  *string `json:"suggestion"`
}

type rawAnalysisResult struct {
	ValidationScore *json.Number `json:"validationScore"`
	ScoreRationale  *string      `json:"scoreRationale"`
	RedFlags        []rawRedFlag `json:"redFlags"`
	Summary         *string      `json:"summary"`
}

// ParseAnalysisResult プロバイダーの応答をスキーマ検証付きでデコード
//
// ```json フェンスで囲まれた応答も受け付ける。
func ParseAnalysisResult(data []byte) (*AnalysisResult, error) {
	cleaned := stripCodeFence(data)

	dec := json.NewDecoder(bytes.NewReader(cleaned))
	dec.UseNumber()

	var raw rawAnalysisResult
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode analysis result: %w", err)
	}

	if raw.ValidationScore == nil {
		return nil, fmt.Errorf("validationScore is required")
	}
	score, err := raw.ValidationScore.Int64()
	if err != nil {
		return nil, fmt.Errorf("validationScore must be an integer: %w", err)
	}
	if raw.ScoreRationale == nil {
		return nil, fmt.Errorf("scoreRationale is required")
	}
	if raw.Summary == nil {
		return nil, fmt.Errorf("summary is required")
	}
	if raw.RedFlags == nil {
		return nil, fmt.Errorf("redFlags is required")
	}

	result := &AnalysisResult{
		ValidationScore: int(score),
		ScoreRationale:  *raw.ScoreRationale,
		Summary:         *raw.Summary,
		RedFlags:        make([]RedFlag, 0, len(raw.RedFlags)),
	}

	for i, f := range raw.RedFlags {
		if f.Title == nil || f.Description == nil || f.Severity == nil || f.Category == nil || f.Suggestion == nil {
			return nil, fmt.Errorf("redFlags[%d]: missing required field", i)
		}
		result.RedFlags = append(result.RedFlags, RedFlag{
			Title:       *f.Title,
			Description: *f.Description,
			Severity:    Severity(*f.Severity),
			Category:    RiskCategory(*f.Category),
			Suggestion:  *f.Suggestion,
		})
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// stripCodeFence ```json ... ``` で囲まれた応答からJSON部分を取り出す
func stripCodeFence(data []byte) []byte {
	text := strings.TrimSpace(string(data))
	if idx := strings.Index(text, "```json"); idx != -1 {
		text = text[idx+len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[3:]
	} else {
		return []byte(text)
	}
	if idx := strings.Index(text, "```"); idx != -1 {
		text = text[:idx]
	}
	return []byte(strings.TrimSpace(text))
}

// RiskMatrix カテゴリ×深刻度ごとのフラグ数
type RiskMatrix map[RiskCategory]map[Severity]int

// NewRiskMatrix フラグ一覧からリスクマトリクスを作成
func NewRiskMatrix(flags []RedFlag) RiskMatrix {
	m := make(RiskMatrix, len(RiskCategories))
	for _, cat := range RiskCategories {
		m[cat] = make(map[Severity]int, len(Severities))
	}
	for _, flag := range flags {
		if row, ok := m[flag.Category]; ok {
			row[flag.Severity]++
		}
	}
	return m
}

// Count 指定セルのフラグ数
func (m RiskMatrix) Count(category RiskCategory, severity Severity) int {
	return m[category][severity]
}
