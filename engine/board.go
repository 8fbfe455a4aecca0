package engine

// Board and economy constants. The board is a fixed 28-space loop with four
// corner spaces, 18 properties grouped into seven districts, two tax spaces,
// two community spaces and two chance spaces.
const (
	BoardSize = 28

	StartIndex    = 0
	JailIndex     = 7
	ParkingIndex  = 14
	GoToJailIndex = 21

	StartingCoins = 1500
	Salary        = 200
	JailFine      = 50
	JailTurns     = 3

	MaxHouses = 4

	// Mortgage pays out 50% of the price; lifting it costs 55%.
	mortgagePct   = 50
	unmortgagePct = 55

	// Buildings sell back for half their cost.
	buildingSalePct = 50

	// MaxGameTurns counts individual player turns, not full table rounds.
	MaxGameTurns     = 200
	MaxCounterOffers = 5
	MaxDoubles       = 3

	logLimit = 50
)

// SpaceType identifies what happens when a player lands on a space.
type SpaceType uint8

const (
	SpaceProperty SpaceType = iota
	SpaceTax
	SpacePayday
	SpaceJail
	SpaceGoToJail
	SpaceParking
	SpaceCommunity
	SpaceChance
)

// RentTable holds the rent tiers for a property: index 0 is the unimproved
// base rent, 1..4 are the house tiers, 5 is the hotel tier.
type RentTable [6]int

// BoardSpace is one space on the loop. Property fields (District, Price,
// Rent) are zero for non-property spaces; TaxAmount is set only on tax
// spaces. Ownership fields are the mutable part.
type BoardSpace struct {
	Index       int       `json:"index"`
	Name        string    `json:"name"`
	Type        SpaceType `json:"type"`
	District    string    `json:"district,omitempty"`
	Price       int       `json:"price,omitempty"`
	Rent        RentTable `json:"rent,omitempty"`
	TaxAmount   int       `json:"taxAmount,omitempty"`
	OwnerID     string    `json:"ownerId,omitempty"`
	Houses      int       `json:"houses"`
	HasHotel    bool      `json:"hasHotel"`
	IsMortgaged bool      `json:"isMortgaged"`
}

// districtCosts maps a district to its per-house and hotel build cost.
// A hotel additionally requires four houses already on the property.
var districtCosts = map[string]struct{ House, Hotel int }{
	"oldtown":  {50, 50},
	"market":   {50, 50},
	"harbor":   {100, 100},
	"midtown":  {100, 100},
	"theater":  {150, 150},
	"techpark": {150, 150},
	"skyline":  {200, 200},
}

// HouseCost returns the per-house build cost for a property's district.
func HouseCost(district string) int { return districtCosts[district].House }

// HotelCost returns the hotel build cost for a property's district.
func HotelCost(district string) int { return districtCosts[district].Hotel }

func prop(idx int, name, district string, price int, rent RentTable) BoardSpace {
	return BoardSpace{Index: idx, Name: name, Type: SpaceProperty, District: district, Price: price, Rent: rent}
}

// NewBoard returns the fixed 28-space board layout in starting condition:
// everything bank-owned, unmortgaged and unbuilt.
func NewBoard() []BoardSpace {
	return []BoardSpace{
		{Index: 0, Name: "Payday", Type: SpacePayday},
		prop(1, "Cannery Row", "oldtown", 60, RentTable{4, 20, 60, 180, 320, 450}),
		prop(2, "Mill Street", "oldtown", 60, RentTable{6, 30, 90, 270, 400, 550}),
		{Index: 3, Name: "Community", Type: SpaceCommunity},
		{Index: 4, Name: "Income Tax", Type: SpaceTax, TaxAmount: 150},
		prop(5, "Grain Exchange", "market", 100, RentTable{8, 40, 100, 300, 450, 600}),
		prop(6, "Fish Market", "market", 100, RentTable{8, 40, 100, 300, 450, 600}),
		{Index: 7, Name: "Jail", Type: SpaceJail},
		prop(8, "Spice Bazaar", "market", 120, RentTable{10, 50, 150, 450, 625, 750}),
		{Index: 9, Name: "Chance", Type: SpaceChance},
		prop(10, "North Pier", "harbor", 140, RentTable{12, 60, 180, 500, 700, 900}),
		prop(11, "Dry Docks", "harbor", 140, RentTable{12, 60, 180, 500, 700, 900}),
		prop(12, "Lighthouse Quay", "harbor", 160, RentTable{14, 70, 200, 550, 750, 950}),
		{Index: 13, Name: "Community", Type: SpaceCommunity},
		{Index: 14, Name: "Free Parking", Type: SpaceParking},
		prop(15, "Fifth Avenue", "midtown", 180, RentTable{16, 80, 220, 600, 800, 1000}),
		prop(16, "Grand Plaza", "midtown", 200, RentTable{18, 90, 250, 700, 875, 1050}),
		{Index: 17, Name: "Chance", Type: SpaceChance},
		prop(18, "Orpheum", "theater", 220, RentTable{20, 100, 300, 750, 925, 1100}),
		prop(19, "Lyric Hall", "theater", 220, RentTable{20, 100, 300, 750, 925, 1100}),
		prop(20, "The Majestic", "theater", 240, RentTable{22, 110, 330, 800, 975, 1150}),
		{Index: 21, Name: "Go To Jail", Type: SpaceGoToJail},
		prop(22, "Foundry Labs", "techpark", 260, RentTable{24, 120, 360, 850, 1025, 1200}),
		prop(23, "Relay Campus", "techpark", 280, RentTable{26, 130, 390, 900, 1100, 1275}),
		{Index: 24, Name: "Luxury Tax", Type: SpaceTax, TaxAmount: 100},
		prop(25, "Summit Tower", "skyline", 300, RentTable{28, 150, 450, 1000, 1200, 1400}),
		prop(26, "Beacon Heights", "skyline", 320, RentTable{30, 160, 470, 1050, 1275, 1500}),
		prop(27, "The Spire", "skyline", 350, RentTable{35, 175, 500, 1100, 1300, 1600}),
	}
}

// DistrictIndices returns the board indices of every property in a district.
func DistrictIndices(board []BoardSpace, district string) []int {
	var out []int
	for i := range board {
		if board[i].Type == SpaceProperty && board[i].District == district {
			out = append(out, i)
		}
	}
	return out
}
