package card

import "testing"

func TestFeatureRoundTrip(t *testing.T) {
	seen := make(map[Card]bool)
	for count := 0; count < FeatureValues; count++ {
		for color := 0; color < FeatureValues; color++ {
			for shading := 0; shading < FeatureValues; shading++ {
				for shape := 0; shape < FeatureValues; shape++ {
					c := FromFeatures(count, color, shading, shape)
					if !c.Valid() {
						t.Fatalf("FromFeatures(%d,%d,%d,%d) invalid", count, color, shading, shape)
					}
					if seen[c] {
						t.Fatalf("duplicate card %v", c)
					}
					seen[c] = true
					f := c.Features()
					if f[0] != count || f[1] != color || f[2] != shading || f[3] != shape {
						t.Fatalf("card %v features = %v, want [%d %d %d %d]", c, f, count, color, shading, shape)
					}
				}
			}
		}
	}
	if len(seen) != FullDeckSize {
		t.Fatalf("expected %d distinct cards, got %d", FullDeckSize, len(seen))
	}
}

func TestFromFeaturesRejectsOutOfRange(t *testing.T) {
	if c := FromFeatures(3, 0, 0, 0); c != CardInvalid {
		t.Fatalf("expected CardInvalid, got %v", c)
	}
	if c := FromFeatures(0, -1, 0, 0); c != CardInvalid {
		t.Fatalf("expected CardInvalid, got %v", c)
	}
}

func TestParseString(t *testing.T) {
	for i := 0; i < FullDeckSize; i++ {
		c := Card(i)
		parsed, err := Parse(c.String())
		if err != nil {
			t.Fatalf("Parse(%q) err: %v", c.String(), err)
		}
		if parsed != c {
			t.Fatalf("Parse(%q) = %v, want %v", c.String(), parsed, c)
		}
	}
	if _, err := Parse("9XYZ"); err == nil {
		t.Fatal("expected error for bogus string")
	}
}

func TestDeckSizes(t *testing.T) {
	if got := FullDeck().Count(); got != FullDeckSize {
		t.Fatalf("full deck size = %d", got)
	}
	if got := Deck(12).Count(); got != 12 {
		t.Fatalf("Deck(12) size = %d", got)
	}
	if got := Deck(200).Count(); got != FullDeckSize {
		t.Fatalf("Deck(200) size = %d, want clamp to %d", got, FullDeckSize)
	}
}
