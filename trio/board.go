package trio

import (
	"math/rand"
	"sync"
	"time"

	"trio-lite/card"
)

// Board 持有场面牌格与令牌矩阵, 所有读写都经过同一把互斥锁.
// 不变量: slotToCard 与 cardToSlot 互为双射; 令牌只能压在有牌的格子上
type Board struct {
	mu sync.Mutex

	slotToCard []card.Card // CardInvalid 表示空格
	cardToSlot []int       // 按牌编号索引, NoSlot 表示不在场上
	tokens     [][]bool    // [agent][slot]

	dealDelay time.Duration
	sink      Sink
	rng       *rand.Rand
}

func NewBoard(agents, gridSize, deckSize int, dealDelay time.Duration, sink Sink, rng *rand.Rand) *Board {
	b := &Board{
		slotToCard: make([]card.Card, gridSize),
		cardToSlot: make([]int, deckSize),
		tokens:     make([][]bool, agents),
		dealDelay:  dealDelay,
		sink:       sink,
		rng:        rng,
	}
	for i := range b.slotToCard {
		b.slotToCard[i] = card.CardInvalid
	}
	for i := range b.cardToSlot {
		b.cardToSlot[i] = NoSlot
	}
	for i := range b.tokens {
		b.tokens[i] = make([]bool, gridSize)
	}
	return b
}

func (b *Board) GridSize() int { return len(b.slotToCard) }

// CountCards 场上牌数
func (b *Board) CountCards() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.slotToCard {
		if c.Valid() {
			n++
		}
	}
	return n
}

func (b *Board) SlotOccupied(slot int) bool {
	if slot < 0 || slot >= len(b.slotToCard) {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.slotToCard[slot].Valid()
}

func (b *Board) CardAt(slot int) (card.Card, bool) {
	if slot < 0 || slot >= len(b.slotToCard) {
		return card.CardInvalid, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.slotToCard[slot]
	return c, c.Valid()
}

func (b *Board) SlotOf(c card.Card) (int, bool) {
	if int(c) >= len(b.cardToSlot) {
		return NoSlot, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	slot := b.cardToSlot[c]
	return slot, slot != NoSlot
}

// PlaceCard 把 c 放到空格 slot 上. 发牌延迟在持锁期间生效,
// 以保证 agent 在铺牌过程中观察不到半新半旧的场面
func (b *Board) PlaceCard(c card.Card, slot int) error {
	if slot < 0 || slot >= len(b.slotToCard) {
		return ErrSlotRange
	}
	if !c.Valid() || int(c) >= len(b.cardToSlot) {
		return InvalidStateError("place of invalid card")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.slotToCard[slot].Valid() {
		return InvalidStateError("place on occupied slot")
	}
	if b.cardToSlot[c] != NoSlot {
		return InvalidStateError("card already on board")
	}
	b.sleep(b.dealDelay)
	b.slotToCard[slot] = c
	b.cardToSlot[c] = slot
	b.sink.CardPlaced(slot, c)
	return nil
}

// RemoveCard 撤掉 slot 上的牌, 同一临界区内清光该格的所有令牌,
// 返回被剥夺令牌的 agent 列表
func (b *Board) RemoveCard(slot int) ([]int, error) {
	if slot < 0 || slot >= len(b.slotToCard) {
		return nil, ErrSlotRange
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.slotToCard[slot]
	if !c.Valid() {
		return nil, InvalidStateError("remove from empty slot")
	}
	b.sleep(b.dealDelay)
	affected := b.clearSlotTokensLocked(slot)
	b.slotToCard[slot] = card.CardInvalid
	b.cardToSlot[c] = NoSlot
	b.sink.CardRemoved(slot)
	return affected, nil
}

// PlaceToken 在有牌的格子上压令牌. 空格或重复压返回 false
func (b *Board) PlaceToken(agent, slot int) bool {
	if agent < 0 || agent >= len(b.tokens) || slot < 0 || slot >= len(b.slotToCard) {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.slotToCard[slot].Valid() || b.tokens[agent][slot] {
		return false
	}
	b.tokens[agent][slot] = true
	b.sink.TokenPlaced(agent, slot)
	return true
}

// RemoveToken 撤掉令牌, 返回令牌原先是否存在
func (b *Board) RemoveToken(agent, slot int) bool {
	if agent < 0 || agent >= len(b.tokens) || slot < 0 || slot >= len(b.slotToCard) {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.tokens[agent][slot] {
		return false
	}
	b.tokens[agent][slot] = false
	b.sink.TokenRemoved(agent, slot)
	return true
}

func (b *Board) HasToken(agent, slot int) bool {
	if agent < 0 || agent >= len(b.tokens) || slot < 0 || slot >= len(b.slotToCard) {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens[agent][slot]
}

// TokenedCards 当前被 agent 压了令牌的场上牌 (原子快照)
func (b *Board) TokenedCards(agent int) []card.Card {
	if agent < 0 || agent >= len(b.tokens) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []card.Card
	for slot, set := range b.tokens[agent] {
		if set && b.slotToCard[slot].Valid() {
			out = append(out, b.slotToCard[slot])
		}
	}
	return out
}

// TokenedSlots 当前被 agent 压了令牌的格子
func (b *Board) TokenedSlots(agent int) []int {
	if agent < 0 || agent >= len(b.tokens) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []int
	for slot, set := range b.tokens[agent] {
		if set {
			out = append(out, slot)
		}
	}
	return out
}

// FindEmptySlot 在空格中均匀随机挑一个
func (b *Board) FindEmptySlot() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var empty []int
	for slot, c := range b.slotToCard {
		if !c.Valid() {
			empty = append(empty, slot)
		}
	}
	if len(empty) == 0 {
		return NoSlot, false
	}
	return empty[b.rng.Intn(len(empty))], true
}

// ClearTokensOnSlot 清光 slot 上所有 agent 的令牌, 返回受影响的 agent
func (b *Board) ClearTokensOnSlot(slot int) []int {
	if slot < 0 || slot >= len(b.slotToCard) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clearSlotTokensLocked(slot)
}

// ClearAgentTokens 清光 agent 的所有令牌, 返回清除数
func (b *Board) ClearAgentTokens(agent int) int {
	if agent < 0 || agent >= len(b.tokens) {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for slot, set := range b.tokens[agent] {
		if set {
			b.tokens[agent][slot] = false
			b.sink.TokenRemoved(agent, slot)
			n++
		}
	}
	return n
}

// ClearAllTokens 重洗前清空整个令牌矩阵
func (b *Board) ClearAllTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for agent := range b.tokens {
		for slot, set := range b.tokens[agent] {
			if set {
				b.tokens[agent][slot] = false
				b.sink.TokenRemoved(agent, slot)
			}
		}
	}
}

// Cards 场上所有有效牌
func (b *Board) Cards() []card.Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []card.Card
	for _, c := range b.slotToCard {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// SlotCards 按格子顺序拷贝整行 (含空格), 供快照使用
func (b *Board) SlotCards() []card.Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]card.Card, len(b.slotToCard))
	copy(out, b.slotToCard)
	return out
}

func (b *Board) clearSlotTokensLocked(slot int) []int {
	var affected []int
	for agent := range b.tokens {
		if b.tokens[agent][slot] {
			b.tokens[agent][slot] = false
			b.sink.TokenRemoved(agent, slot)
			affected = append(affected, agent)
		}
	}
	return affected
}

func (b *Board) sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
