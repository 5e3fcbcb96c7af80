package derive

//safemath:derive(add, div)
type Amount int64

func (a Amount) TryAdd(rhs Amount) (Amount, bool) { return a + rhs, true }
func (a Amount) TryDiv(rhs Amount) (Amount, bool) { return a, rhs != 0 }

//safemath:derive() // want "SM010"
type Empty int

//safemath:derive(add, add) // want "SM011"
type Dup int

//safemath:derive(pow) // want "SM012"
type Pow int

//safemath:derive add // want "SM013"
type NoList int

//safemath:derive(sub) // want "SM014"
type Cents int64

//safemath:derive(rem) // want "SM015"
type Bag struct{ items []int }

func (b Bag) TryRem(rhs Bag) (Bag, bool) { return b, true }

//safemath:derive(add) // want "SM016"
func helper() {}
