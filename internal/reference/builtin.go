package reference

// Builtin returns the catalog served when no catalog file is configured.
// It covers the professions and the busiest outposts only.
func Builtin() *Catalog {
	return New([]Map{
		{ID: 20, Name: "Droknar's Forge", Continent: 0, Region: 8},
		{ID: 55, Name: "Lion's Arch", Continent: 0, Region: 5},
		{ID: 81, Name: "Ascalon City", Continent: 0, Region: 2},
		{ID: 138, Name: "Temple of the Ages", Continent: 0, Region: 7},
		{ID: 194, Name: "Kaineng Center", Continent: 1, Region: 12},
		{ID: 248, Name: "Great Temple of Balthazar", Continent: 3, Region: 24},
		{ID: 449, Name: "Kamadan, Jewel of Istan", Continent: 2, Region: 17},
		{ID: 857, Name: "Embark Beach", Continent: 3, Region: 25},
	}, []Profession{
		{ID: 0, Name: "None", Alias: "X"},
		{ID: 1, Name: "Warrior", Alias: "W"},
		{ID: 2, Name: "Ranger", Alias: "R"},
		{ID: 3, Name: "Monk", Alias: "Mo"},
		{ID: 4, Name: "Necromancer", Alias: "N"},
		{ID: 5, Name: "Mesmer", Alias: "Me"},
		{ID: 6, Name: "Elementalist", Alias: "E"},
		{ID: 7, Name: "Assassin", Alias: "A"},
		{ID: 8, Name: "Ritualist", Alias: "Rt"},
		{ID: 9, Name: "Paragon", Alias: "P"},
		{ID: 10, Name: "Dervish", Alias: "D"},
	})
}
