package card

import (
	"fmt"
	"strings"
)

// Card 牌枚举
//
// 编码规则: 牌号 0..80, 按 3 进制展开成 4 个特征位
// - 位 0: 数量 (1/2/3)
// - 位 1: 颜色 (red/green/purple)
// - 位 2: 底纹 (solid/striped/open)
// - 位 3: 形状 (diamond/squiggle/oval)
type Card byte

const (
	// FeatureCount 每张牌的特征数
	FeatureCount = 4
	// FeatureValues 每个特征的取值数
	FeatureValues = 3
	// ComboSize 一组合法组合的牌数
	ComboSize = 3
	// FullDeckSize 全牌库大小 (3^4)
	FullDeckSize = 81

	CardInvalid Card = 0xFF
)

var pow3 = [FeatureCount]int{1, 3, 9, 27}

// Valid reports whether c encodes an actual card.
func (c Card) Valid() bool {
	return c < FullDeckSize
}

// Feature 获取第 i 个特征的取值 0..2
func (c Card) Feature(i int) int {
	if !c.Valid() || i < 0 || i >= FeatureCount {
		return -1
	}
	return (int(c) / pow3[i]) % FeatureValues
}

// Features returns all four feature digits of the card.
func (c Card) Features() [FeatureCount]int {
	var f [FeatureCount]int
	for i := 0; i < FeatureCount; i++ {
		f[i] = c.Feature(i)
	}
	return f
}

func (c Card) CountVal() int    { return c.Feature(0) }
func (c Card) Color() Color     { return Color(c.Feature(1)) }
func (c Card) Shading() Shading { return Shading(c.Feature(2)) }
func (c Card) Shape() Shape     { return Shape(c.Feature(3)) }

func (c Card) String() string {
	if !c.Valid() {
		return "Invalid"
	}
	return fmt.Sprintf("%d%s%s%s",
		c.CountVal()+1,
		c.Color().Letter(),
		c.Shading().Letter(),
		c.Shape().Letter(),
	)
}

// FromFeatures 由特征值组装牌, 任一越界返回 CardInvalid
func FromFeatures(count, color, shading, shape int) Card {
	digits := [FeatureCount]int{count, color, shading, shape}
	n := 0
	for i, d := range digits {
		if d < 0 || d >= FeatureValues {
			return CardInvalid
		}
		n += d * pow3[i]
	}
	return Card(n)
}

// Parse converts a compact string like "2RSO" back into a Card.
// Layout: count digit, color letter, shading letter, shape letter.
func Parse(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 4 {
		return CardInvalid, fmt.Errorf("invalid card string: %q", s)
	}
	count := int(s[0] - '1')
	color, ok := colorFromLetter(s[1])
	if !ok {
		return CardInvalid, fmt.Errorf("invalid color: %c", s[1])
	}
	shading, ok := shadingFromLetter(s[2])
	if !ok {
		return CardInvalid, fmt.Errorf("invalid shading: %c", s[2])
	}
	shape, ok := shapeFromLetter(s[3])
	if !ok {
		return CardInvalid, fmt.Errorf("invalid shape: %c", s[3])
	}
	c := FromFeatures(count, int(color), int(shading), int(shape))
	if c == CardInvalid {
		return CardInvalid, fmt.Errorf("invalid card string: %q", s)
	}
	return c, nil
}
