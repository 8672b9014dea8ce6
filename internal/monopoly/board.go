package monopoly

// SquareKind classifies a board square.
type SquareKind string

const (
	KindOrdinary SquareKind = "ordinary"
	KindRailroad SquareKind = "railroad"
	KindUtility  SquareKind = "utility"
	KindCard     SquareKind = "card"
	KindTax      SquareKind = "tax"
	KindCorner   SquareKind = "corner"
)

// Square is one of the 40 fixed board positions. Ownership, mortgage state and
// improvement level mutate over the game; the rest is static board data.
type Square struct {
	Position  int        `json:"position"`
	Name      string     `json:"name"`
	Kind      SquareKind `json:"kind"`
	Group     string     `json:"group,omitempty"`
	Price     int        `json:"price,omitempty"` // purchase price, or tax amount for tax squares
	Rents     []int      `json:"rents,omitempty"` // indexed by improvement level
	Mortgage  int        `json:"mortgage,omitempty"`
	HouseCost int        `json:"houseCost,omitempty"`

	OwnerID   string `json:"ownerId,omitempty"`
	Mortgaged bool   `json:"mortgaged"`
	Houses    int    `json:"houses"` // 0..5, 5 = hotel
}

// Ownable reports whether the square can be bought.
func (s *Square) Ownable() bool {
	switch s.Kind {
	case KindOrdinary, KindRailroad, KindUtility:
		return true
	}
	return false
}

// railroadRents applies to every railroad, indexed by owned railroads - 1.
var railroadRents = []int{25, 50, 100, 200}

// newBoard builds the fixed 40-square board.
func newBoard() []*Square {
	ord := func(pos int, name, group string, price, mortgage, houseCost int, rents ...int) *Square {
		return &Square{Position: pos, Name: name, Kind: KindOrdinary, Group: group, Price: price, Mortgage: mortgage, HouseCost: houseCost, Rents: rents}
	}
	rr := func(pos int, name string) *Square {
		return &Square{Position: pos, Name: name, Kind: KindRailroad, Group: "railroad", Price: 200, Mortgage: 100, Rents: railroadRents}
	}
	util := func(pos int, name string) *Square {
		return &Square{Position: pos, Name: name, Kind: KindUtility, Group: "utility", Price: 150, Mortgage: 75}
	}
	card := func(pos int, name string) *Square {
		return &Square{Position: pos, Name: name, Kind: KindCard}
	}
	tax := func(pos int, name string, amount int) *Square {
		return &Square{Position: pos, Name: name, Kind: KindTax, Price: amount}
	}
	corner := func(pos int, name string) *Square {
		return &Square{Position: pos, Name: name, Kind: KindCorner}
	}

	return []*Square{
		corner(0, "GO"),
		ord(1, "Mediterranean Avenue", "brown", 60, 30, 50, 2, 10, 30, 90, 160, 250),
		card(2, "Community Chest"),
		ord(3, "Baltic Avenue", "brown", 60, 30, 50, 4, 20, 60, 180, 320, 450),
		tax(4, "Income Tax", 200),
		rr(5, "Reading Railroad"),
		ord(6, "Oriental Avenue", "lightblue", 100, 50, 50, 6, 30, 90, 270, 400, 550),
		card(7, "Chance"),
		ord(8, "Vermont Avenue", "lightblue", 100, 50, 50, 6, 30, 90, 270, 400, 550),
		ord(9, "Connecticut Avenue", "lightblue", 120, 60, 50, 8, 40, 100, 300, 450, 600),
		corner(10, "Jail / Just Visiting"),
		ord(11, "St. Charles Place", "pink", 140, 70, 100, 10, 50, 150, 450, 625, 750),
		util(12, "Electric Company"),
		ord(13, "States Avenue", "pink", 140, 70, 100, 10, 50, 150, 450, 625, 750),
		ord(14, "Virginia Avenue", "pink", 160, 80, 100, 12, 60, 180, 500, 700, 900),
		rr(15, "Pennsylvania Railroad"),
		ord(16, "St. James Place", "orange", 180, 90, 100, 14, 70, 200, 550, 750, 950),
		card(17, "Community Chest"),
		ord(18, "Tennessee Avenue", "orange", 180, 90, 100, 14, 70, 200, 550, 750, 950),
		ord(19, "New York Avenue", "orange", 200, 100, 100, 16, 80, 220, 600, 800, 1000),
		corner(20, "Free Parking"),
		ord(21, "Kentucky Avenue", "red", 220, 110, 150, 18, 90, 250, 700, 875, 1050),
		card(22, "Chance"),
		ord(23, "Indiana Avenue", "red", 220, 110, 150, 18, 90, 250, 700, 875, 1050),
		ord(24, "Illinois Avenue", "red", 240, 120, 150, 20, 100, 300, 750, 925, 1100),
		rr(25, "B&O Railroad"),
		ord(26, "Atlantic Avenue", "yellow", 260, 130, 150, 22, 110, 330, 800, 975, 1150),
		ord(27, "Ventnor Avenue", "yellow", 260, 130, 150, 22, 110, 330, 800, 975, 1150),
		util(28, "Water Works"),
		ord(29, "Marvin Gardens", "yellow", 280, 140, 150, 24, 120, 360, 850, 1025, 1200),
		corner(30, "Go To Jail"),
		ord(31, "Pacific Avenue", "green", 300, 150, 200, 26, 130, 390, 900, 1100, 1275),
		ord(32, "North Carolina Avenue", "green", 300, 150, 200, 26, 130, 390, 900, 1100, 1275),
		card(33, "Community Chest"),
		ord(34, "Pennsylvania Avenue", "green", 320, 160, 200, 28, 150, 450, 1000, 1200, 1400),
		rr(35, "Short Line"),
		card(36, "Chance"),
		ord(37, "Park Place", "blue", 350, 175, 200, 35, 175, 500, 1100, 1300, 1500),
		tax(38, "Luxury Tax", 100),
		ord(39, "Boardwalk", "blue", 400, 200, 200, 50, 200, 600, 1400, 1700, 2000),
	}
}
