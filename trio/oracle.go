package trio

import "trio-lite/card"

// Oracle 裁定组合合法性的外部规则源
type Oracle interface {
	// FindCombinations 在给定牌集中搜索合法组合, 最多 limit 组 (limit <= 0 不限)
	FindCombinations(cards []card.Card, limit int) [][]card.Card
	IsValidCombination(cards []card.Card) bool
}

// FeatureOracle 基于 card 包特征规则的默认实现
type FeatureOracle struct{}

func (FeatureOracle) FindCombinations(cards []card.Card, limit int) [][]card.Card {
	return card.FindCombos(cards, limit)
}

func (FeatureOracle) IsValidCombination(cards []card.Card) bool {
	return card.IsCombo(cards)
}
