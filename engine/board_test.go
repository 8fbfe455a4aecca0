package engine

import "testing"

func TestBoardLayout(t *testing.T) {
	board := NewBoard()
	if len(board) != BoardSize {
		t.Fatalf("expected %d spaces, got %d", BoardSize, len(board))
	}
	for i, s := range board {
		if s.Index != i {
			t.Errorf("space %d carries index %d", i, s.Index)
		}
	}

	corners := map[int]SpaceType{
		StartIndex:    SpacePayday,
		JailIndex:     SpaceJail,
		ParkingIndex:  SpaceParking,
		GoToJailIndex: SpaceGoToJail,
	}
	for idx, want := range corners {
		if board[idx].Type != want {
			t.Errorf("space %d: expected type %d, got %d", idx, want, board[idx].Type)
		}
	}

	properties := 0
	districts := make(map[string]int)
	for _, s := range board {
		if s.Type == SpaceProperty {
			properties++
			districts[s.District]++
		}
	}
	if properties != 18 {
		t.Errorf("expected 18 properties, got %d", properties)
	}
	if len(districts) != 7 {
		t.Errorf("expected 7 districts, got %d", len(districts))
	}
	for district, n := range districts {
		if n < 2 || n > 3 {
			t.Errorf("district %s has %d properties", district, n)
		}
	}
}

func TestRentTablesEscalate(t *testing.T) {
	for _, s := range NewBoard() {
		if s.Type != SpaceProperty {
			continue
		}
		if s.Price <= 0 {
			t.Errorf("%s has no price", s.Name)
		}
		if s.Rent[1] <= 2*s.Rent[0] {
			t.Errorf("%s: one house (%d) must beat the doubled base rent (%d)", s.Name, s.Rent[1], 2*s.Rent[0])
		}
		for tier := 1; tier < len(s.Rent); tier++ {
			if s.Rent[tier] <= s.Rent[tier-1] {
				t.Errorf("%s: rent tier %d (%d) does not exceed tier %d (%d)",
					s.Name, tier, s.Rent[tier], tier-1, s.Rent[tier-1])
			}
		}
	}
}

func TestBuildCostsByDistrict(t *testing.T) {
	if got := HouseCost("oldtown"); got != 50 {
		t.Errorf("oldtown house cost: expected 50, got %d", got)
	}
	if got := HotelCost("skyline"); got != 200 {
		t.Errorf("skyline hotel cost: expected 200, got %d", got)
	}
	for _, s := range NewBoard() {
		if s.Type == SpaceProperty && HouseCost(s.District) == 0 {
			t.Errorf("%s: district %q has no build cost", s.Name, s.District)
		}
	}
}

func TestDistrictIndices(t *testing.T) {
	board := NewBoard()
	got := DistrictIndices(board, "harbor")
	want := []int{10, 11, 12}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
