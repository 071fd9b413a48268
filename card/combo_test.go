package card

import "testing"

func TestIsCombo(t *testing.T) {
	// All features identical except one all-distinct feature.
	a := FromFeatures(0, 0, 0, 0)
	b := FromFeatures(1, 0, 0, 0)
	c := FromFeatures(2, 0, 0, 0)
	if !IsCombo([]Card{a, b, c}) {
		t.Fatal("all-distinct count feature should form a combo")
	}

	// Two equal, one different in a single feature breaks the combo.
	d := FromFeatures(1, 1, 0, 0)
	if IsCombo([]Card{a, b, d}) {
		t.Fatal("2+1 split on a feature must not form a combo")
	}

	if IsCombo([]Card{a, b}) {
		t.Fatal("wrong card count must not form a combo")
	}
	if IsCombo([]Card{a, b, CardInvalid}) {
		t.Fatal("invalid card must not form a combo")
	}
}

func TestComboThirdCompletes(t *testing.T) {
	for i := 0; i < FullDeckSize; i += 7 {
		for j := 0; j < FullDeckSize; j += 5 {
			if i == j {
				continue
			}
			a, b := Card(i), Card(j)
			third := comboThird(a, b)
			if !IsCombo([]Card{a, b, third}) {
				t.Fatalf("comboThird(%v, %v) = %v does not complete a combo", a, b, third)
			}
		}
	}
}

func TestFindCombosFullDeck(t *testing.T) {
	// 81 张全牌库的组合总数是已知常数 1080
	combos := FindCombos(FullDeck(), 0)
	if len(combos) != 1080 {
		t.Fatalf("full deck combos = %d, want 1080", len(combos))
	}
	for _, set := range combos {
		if !IsCombo(set) {
			t.Fatalf("FindCombos returned non-combo %v", set)
		}
	}
}

func TestFindCombosLimit(t *testing.T) {
	combos := FindCombos(FullDeck(), 1)
	if len(combos) != 1 {
		t.Fatalf("limit=1 returned %d combos", len(combos))
	}
}

func TestFindCombosNone(t *testing.T) {
	// 两张牌不可能成组
	combos := FindCombos([]Card{0, 1}, 0)
	if len(combos) != 0 {
		t.Fatalf("expected no combos, got %d", len(combos))
	}
}
