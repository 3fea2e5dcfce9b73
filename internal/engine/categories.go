package engine

type Category string

const (
	CatOnes   Category = "ones"
	CatTwos   Category = "twos"
	CatThrees Category = "threes"
	CatFours  Category = "fours"
	CatFives  Category = "fives"
	CatSixes  Category = "sixes"
)

// Categories is the stage 1 sheet in display order.
var Categories = []Category{
	CatOnes,
	CatTwos,
	CatThrees,
	CatFours,
	CatFives,
	CatSixes,
}

var faces = map[Category]int{
	CatOnes:   1,
	CatTwos:   2,
	CatThrees: 3,
	CatFours:  4,
	CatFives:  5,
	CatSixes:  6,
}

// Face returns the die face a category counts, or 0 for an unknown category.
func (c Category) Face() int { return faces[c] }

func (c Category) Valid() bool {
	_, ok := faces[c]
	return ok
}

func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, c.Valid()
}
