package engine

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCards(t *testing.T) {
	for _, in := range []string{"[As,Td,7h,3c,2s]", "As Td 7h 3c 2s", "AsTd7h3c2s", "as,TD,7H,3c,2s"} {
		cs, err := ParseCards(in)
		require.NoError(t, err, in)
		assert.Equal(t, "[As,Td,7h,3c,2s]", FormatCards(cs), in)
	}
	for _, bad := range []string{"1s", "Ax", "A", "AsK", "[As,Zz]"} {
		_, err := ParseCards(bad)
		assert.ErrorIs(t, err, ErrMalformedCard, bad)
	}
}

func TestDeckDealsUniqueCards(t *testing.T) {
	d := NewDeck(rand.New(rand.NewSource(7)))
	seen := map[Card]bool{}
	for d.Remaining() > 0 {
		cs, err := d.Deal(4)
		require.NoError(t, err)
		for _, c := range cs {
			require.True(t, c.Valid())
			require.False(t, seen[c], "duplicate %s", c)
			seen[c] = true
		}
	}
	assert.Len(t, seen, 52)

	_, err := d.Deal(1)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestDeckSameSeedSameOrder(t *testing.T) {
	a := NewDeck(rand.New(rand.NewSource(42)))
	b := NewDeck(rand.New(rand.NewSource(42)))
	ca, _ := a.Deal(52)
	cb, _ := b.Deal(52)
	assert.Equal(t, ca, cb)
}

func TestStackedDeckRejectsDuplicates(t *testing.T) {
	cs, _ := ParseCards("As Kd As")
	_, err := NewStackedDeck(cs)
	assert.ErrorIs(t, err, ErrBadHand)
}

func TestHandDrawKeepsFiveCards(t *testing.T) {
	dealt, _ := ParseCards("Kh 9c 7d 4s 2h")
	for n := 0; n <= 5; n++ {
		h, err := NewHand(dealt)
		require.NoError(t, err)
		held, err := h.Draw(dealt[:n])
		require.NoError(t, err)
		assert.Len(t, held, 5-n)

		deck := NewDeck(rand.New(rand.NewSource(int64(n))))
		var fresh []Card
		for len(fresh) < n {
			c, _ := deck.Deal(1)
			if !contains(dealt, c[0]) {
				fresh = append(fresh, c[0])
			}
		}
		require.NoError(t, h.Complete(fresh))
		assert.Len(t, h.Final, HandSize)
		h.NextCycle()
		assert.Equal(t, h.Final, h.Dealt)
		assert.Empty(t, h.Held)
	}
}

func TestHandDrawRejectsForeignCards(t *testing.T) {
	dealt, _ := ParseCards("Kh 9c 7d 4s 2h")
	h, err := NewHand(dealt)
	require.NoError(t, err)

	_, err = h.Draw([]Card{{Rank: 14, Suit: 's'}})
	assert.ErrorIs(t, err, ErrBadHand)

	_, err = h.Draw([]Card{dealt[0], dealt[0]})
	assert.ErrorIs(t, err, ErrBadHand)
}

func TestCardsAsJSONText(t *testing.T) {
	cs, err := ParseCards("As Td 2c")
	require.NoError(t, err)
	raw, err := json.Marshal(cs)
	require.NoError(t, err)
	assert.JSONEq(t, `["As","Td","2c"]`, string(raw))

	var back []Card
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, cs, back)

	assert.ErrorIs(t, json.Unmarshal([]byte(`["Zz"]`), &back), ErrMalformedCard)
}
