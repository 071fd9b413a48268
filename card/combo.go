package card

// IsCombo 判定 3 张牌是否构成合法组合:
// 每个特征要么三张全同, 要么三张全异
func IsCombo(cards []Card) bool {
	if len(cards) != ComboSize {
		return false
	}
	for _, c := range cards {
		if !c.Valid() {
			return false
		}
	}
	for i := 0; i < FeatureCount; i++ {
		a := cards[0].Feature(i)
		b := cards[1].Feature(i)
		c := cards[2].Feature(i)
		allSame := a == b && b == c
		allDiff := a != b && b != c && a != c
		if !allSame && !allDiff {
			return false
		}
	}
	return true
}

// comboThird returns the unique card completing a combo with a and b.
// 任意两张牌恰有一张第三牌与之成组
func comboThird(a, b Card) Card {
	n := 0
	for i := 0; i < FeatureCount; i++ {
		fa, fb := a.Feature(i), b.Feature(i)
		var fc int
		if fa == fb {
			fc = fa
		} else {
			fc = 3 - fa - fb
		}
		n += fc * pow3[i]
	}
	return Card(n)
}

// FindCombos 在 cards 中搜索合法组合, 最多返回 limit 组 (limit <= 0 不限)
func FindCombos(cards []Card, limit int) [][]Card {
	var out [][]Card
	present := make(map[Card]int, len(cards))
	for idx, c := range cards {
		if c.Valid() {
			present[c] = idx
		}
	}
	for i := 0; i < len(cards); i++ {
		if !cards[i].Valid() {
			continue
		}
		for j := i + 1; j < len(cards); j++ {
			if !cards[j].Valid() {
				continue
			}
			third := comboThird(cards[i], cards[j])
			k, ok := present[third]
			if !ok || k <= j {
				continue
			}
			out = append(out, []Card{cards[i], cards[j], third})
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
	}
	return out
}
