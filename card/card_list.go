package card

import "math/rand"

type CardList []Card

// FullDeck 构造全牌库 0..80
func FullDeck() CardList {
	deck := make(CardList, FullDeckSize)
	for i := range deck {
		deck[i] = Card(i)
	}
	return deck
}

// Deck 构造前 n 张牌的牌库 (n <= 81)
func Deck(n int) CardList {
	if n < 0 {
		n = 0
	}
	if n > FullDeckSize {
		n = FullDeckSize
	}
	deck := make(CardList, n)
	for i := range deck {
		deck[i] = Card(i)
	}
	return deck
}

// Count 获取总牌数
func (ds CardList) Count() int {
	return len(ds)
}

func (ds CardList) Contains(c Card) bool {
	for _, cc := range ds {
		if cc == c {
			return true
		}
	}
	return false
}

func (ds CardList) Clone() CardList {
	out := make(CardList, len(ds))
	copy(out, ds)
	return out
}

func (ds CardList) CardsBytes() []byte {
	out := make([]byte, 0, len(ds))
	for _, c := range ds {
		out = append(out, byte(c))
	}
	return out
}

func (ds CardList) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(ds), func(i, j int) {
		ds[i], ds[j] = ds[j], ds[i]
	})
}

func (ds *CardList) Add(cards ...Card) {
	*ds = append(*ds, cards...)
}

// RemoveAt 移除第 i 张并返回, 越界返回 CardInvalid
func (ds *CardList) RemoveAt(i int) Card {
	if i < 0 || i >= len(*ds) {
		return CardInvalid
	}
	c := (*ds)[i]
	*ds = append((*ds)[:i], (*ds)[i+1:]...)
	return c
}

func (ds *CardList) PopCard() Card {
	totalCount := ds.Count()
	if totalCount == 0 {
		return CardInvalid
	}
	c := (*ds)[totalCount-1]
	*ds = (*ds)[:totalCount-1]
	return c
}
