package board

// Classic returns the standard 40-space board.
func Classic() *Board {
	return MustNew(classicSpaces())
}

func street(id, text, color string, price, rent int, houses [MaxHouses]int, hotel, house int) Street {
	return Street{
		ID:                id,
		Text:              text,
		Color:             color,
		InitialPrice:      price,
		Rent:              rent,
		RentPerHouseCount: houses,
		RentHotel:         hotel,
		PriceHouse:        house,
		PriceHotel:        house,
	}
}

func station(id, text string) Station {
	return Station{ID: id, Text: text, InitialPrice: 200, RentBySharedCount: []int{25, 50, 100, 200}}
}

func utility(id, text string) Utility {
	return Utility{ID: id, Text: text, InitialPrice: 150, RentFactorBySharedCount: []int{4, 10}}
}

func classicSpaces() []Space {
	return []Space{
		ActionSpace{ID: "start", Text: "Start"},
		street("mediterranean", "Mediterranean Avenue", "brown", 60, 2, [4]int{10, 30, 90, 160}, 250, 50),
		ActionSpace{ID: "community-1", Text: "Community Chest"},
		street("baltic", "Baltic Avenue", "brown", 60, 4, [4]int{20, 60, 180, 320}, 450, 50),
		ActionSpace{ID: "income-tax", Text: "Income Tax"},
		station("reading-railroad", "Reading Railroad"),
		street("oriental", "Oriental Avenue", "lightblue", 100, 6, [4]int{30, 90, 270, 400}, 550, 50),
		ActionSpace{ID: "chance-1", Text: "Chance"},
		street("vermont", "Vermont Avenue", "lightblue", 100, 6, [4]int{30, 90, 270, 400}, 550, 50),
		street("connecticut", "Connecticut Avenue", "lightblue", 120, 8, [4]int{40, 100, 300, 450}, 600, 50),
		Prison{ID: "prison", Text: "Prison"},
		street("st-charles", "St. Charles Place", "pink", 140, 10, [4]int{50, 150, 450, 625}, 750, 100),
		utility("electric-company", "Electric Company"),
		street("states", "States Avenue", "pink", 140, 10, [4]int{50, 150, 450, 625}, 750, 100),
		street("virginia", "Virginia Avenue", "pink", 160, 12, [4]int{60, 180, 500, 700}, 900, 100),
		station("pennsylvania-railroad", "Pennsylvania Railroad"),
		street("st-james", "St. James Place", "orange", 180, 14, [4]int{70, 200, 550, 750}, 950, 100),
		ActionSpace{ID: "community-2", Text: "Community Chest"},
		street("tennessee", "Tennessee Avenue", "orange", 180, 14, [4]int{70, 200, 550, 750}, 950, 100),
		street("new-york", "New York Avenue", "orange", 200, 16, [4]int{80, 220, 600, 800}, 1000, 100),
		FreeParking{ID: "free-parking", Text: "Free Parking"},
		street("kentucky", "Kentucky Avenue", "red", 220, 18, [4]int{90, 250, 700, 875}, 1050, 150),
		ActionSpace{ID: "chance-2", Text: "Chance"},
		street("indiana", "Indiana Avenue", "red", 220, 18, [4]int{90, 250, 700, 875}, 1050, 150),
		street("illinois", "Illinois Avenue", "red", 240, 20, [4]int{100, 300, 750, 925}, 1100, 150),
		station("bo-railroad", "B. & O. Railroad"),
		street("atlantic", "Atlantic Avenue", "yellow", 260, 22, [4]int{110, 330, 800, 975}, 1150, 150),
		street("ventnor", "Ventnor Avenue", "yellow", 260, 22, [4]int{110, 330, 800, 975}, 1150, 150),
		utility("water-works", "Water Works"),
		street("marvin-gardens", "Marvin Gardens", "yellow", 280, 24, [4]int{120, 360, 850, 1025}, 1200, 150),
		ActionSpace{ID: "go-to-prison", Text: "Go To Prison"},
		street("pacific", "Pacific Avenue", "green", 300, 26, [4]int{130, 390, 900, 1100}, 1275, 200),
		street("north-carolina", "North Carolina Avenue", "green", 300, 26, [4]int{130, 390, 900, 1100}, 1275, 200),
		ActionSpace{ID: "community-3", Text: "Community Chest"},
		street("pennsylvania", "Pennsylvania Avenue", "green", 320, 28, [4]int{150, 450, 1000, 1200}, 1400, 200),
		station("short-line", "Short Line"),
		ActionSpace{ID: "chance-3", Text: "Chance"},
		street("park-place", "Park Place", "darkblue", 350, 35, [4]int{175, 500, 1100, 1300}, 1500, 200),
		ActionSpace{ID: "luxury-tax", Text: "Luxury Tax"},
		street("boardwalk", "Boardwalk", "darkblue", 400, 50, [4]int{200, 600, 1400, 1700}, 2000, 200),
	}
}
