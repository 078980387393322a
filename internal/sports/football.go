package sports

const Football Sport = "football"

func init() {
	Register(Definition{
		Sport: Football,
		Positions: []string{
			"goalkeeper",
			"defender",
			"left back",
			"right back",
			"centre back",
			"midfielder",
			"left midfielder",
			"right midfielder",
			"central midfielder",
			"striker",
		},
		Feet: []string{"right", "left", "both"},
		ExperienceLevels: []string{
			"youth football",
			"recreational",
			"division 8",
			"division 7",
			"division 6",
			"division 5",
			"division 4",
			"division 3",
			"division 2",
			"division 1",
			"second tier",
			"top tier",
		},
		SpecialAbilities: []string{
			"pace",
			"stamina",
			"all-round",
			"positioning",
			"heading",
			"leadership",
			"quick reflexes",
			"shooting",
			"game reading",
			"crossing",
			"long balls",
			"free kicks",
			"dribbling",
			"tackling",
		},
	})
}
