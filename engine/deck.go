package engine

// CardEffect identifies what a chance/community card does when drawn.
type CardEffect uint8

const (
	EffectGain        CardEffect = iota // bank pays the player Amount
	EffectPay                           // player pays the bank Amount
	EffectAdvanceTo                     // move to space Target, salary if passing start
	EffectGoToJail                      // straight to jail, no salary
	EffectJailFree                      // keep a get-out-of-jail card
	EffectRepairs                       // pay Amount per house, HotelAmount per hotel
	EffectCollectEach                   // collect Amount from every other player
)

// Card is one chance or community card.
type Card struct {
	Text        string     `json:"text"`
	Effect      CardEffect `json:"effect"`
	Amount      int        `json:"amount,omitempty"`
	HotelAmount int        `json:"hotelAmount,omitempty"`
	Target      int        `json:"target,omitempty"`
}

// DrawnCard records the last card shown, with the recipient so only they
// can dismiss the prompt.
type DrawnCard struct {
	Card      Card   `json:"card"`
	PlayerID  string `json:"playerId"`
	Community bool   `json:"community"`
}

func chanceCards() []Card {
	return []Card{
		{Text: "Advance to Payday.", Effect: EffectAdvanceTo, Target: StartIndex},
		{Text: "Take the ferry to North Pier.", Effect: EffectAdvanceTo, Target: 10},
		{Text: "Ride the elevator to Summit Tower.", Effect: EffectAdvanceTo, Target: 25},
		{Text: "Caught jaywalking. Go to jail.", Effect: EffectGoToJail},
		{Text: "Bank error in your favor. Collect 120.", Effect: EffectGain, Amount: 120},
		{Text: "Speeding fine. Pay 60.", Effect: EffectPay, Amount: 60},
		{Text: "Street repairs: pay 25 per house, 100 per hotel.", Effect: EffectRepairs, Amount: 25, HotelAmount: 100},
		{Text: "Get out of jail free.", Effect: EffectJailFree},
		{Text: "Your startup exits. Collect 200.", Effect: EffectGain, Amount: 200},
		{Text: "Parking ticket. Pay 40.", Effect: EffectPay, Amount: 40},
	}
}

func communityCards() []Card {
	return []Card{
		{Text: "Tax refund. Collect 100.", Effect: EffectGain, Amount: 100},
		{Text: "Hospital bill. Pay 100.", Effect: EffectPay, Amount: 100},
		{Text: "It's your birthday. Collect 20 from each player.", Effect: EffectCollectEach, Amount: 20},
		{Text: "Insurance premium due. Pay 80.", Effect: EffectPay, Amount: 80},
		{Text: "You won the bake-off. Collect 50.", Effect: EffectGain, Amount: 50},
		{Text: "Get out of jail free.", Effect: EffectJailFree},
		{Text: "Building inspection: pay 40 per house, 115 per hotel.", Effect: EffectRepairs, Amount: 40, HotelAmount: 115},
		{Text: "Inheritance. Collect 150.", Effect: EffectGain, Amount: 150},
		{Text: "School fees. Pay 50.", Effect: EffectPay, Amount: 50},
		{Text: "Advance to Payday.", Effect: EffectAdvanceTo, Target: StartIndex},
	}
}

// Deck is a per-match shuffled card pile. Draw cycles through the shuffled
// order and reshuffles in place once exhausted, so a deck never runs out.
type Deck struct {
	Cards []Card `json:"-"`
	Order []int  `json:"-"`
	Next  int    `json:"-"`
}

func newDeck(cards []Card, g *GameState) Deck {
	d := Deck{Cards: cards, Order: make([]int, len(cards))}
	for i := range d.Order {
		d.Order[i] = i
	}
	d.shuffle(g)
	return d
}

// shuffle is a Fisher-Yates pass over the draw order using the match RNG.
func (d *Deck) shuffle(g *GameState) {
	for i := len(d.Order) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		d.Order[i], d.Order[j] = d.Order[j], d.Order[i]
	}
	d.Next = 0
}

// Draw returns the next card in the shuffled order.
func (d *Deck) Draw(g *GameState) Card {
	if d.Next >= len(d.Order) {
		d.shuffle(g)
	}
	c := d.Cards[d.Order[d.Next]]
	d.Next++
	return c
}
