package domain

import (
	"sort"
	"strconv"
)

// Seat is a physical seat of a flight (not of one instance). Disponible acts
// as the allocation lock: false while an active line item holds the seat.
type Seat struct {
	ID            int64
	VueloID       int64
	NumeroAsiento string
	Clase         CabinClass
	Disponible    bool
}

var seatLetters = []byte{'A', 'B', 'C', 'D', 'E', 'F'}

// generation order: first class rows at the front of the aircraft
var seatClassOrder = []CabinClass{ClassFirst, ClassBusiness, ClassEconomy}

// GenerateSeats builds the missing seat rows for a flight using a
// six-letter-per-row layout. Row numbering continues after the highest row
// already present; PRIMERA rows come first, then EJECUTIVA, then ECONOMICA.
func GenerateSeats(vueloID int64, existing []Seat, missing map[CabinClass]int) []Seat {
	row := 1
	if max := maxRowNumber(existing); max > 0 {
		row = max + 1
	}

	var out []Seat
	for _, class := range seatClassOrder {
		need := missing[class]
		for need > 0 {
			for _, letter := range seatLetters {
				if need <= 0 {
					break
				}
				out = append(out, Seat{
					VueloID:       vueloID,
					NumeroAsiento: strconv.Itoa(row) + string(letter),
					Clase:         class,
					Disponible:    true,
				})
				need--
			}
			row++
		}
	}
	return out
}

// CountSeatsByClass tallies the current inventory per class.
func CountSeatsByClass(seats []Seat) map[CabinClass]int {
	counts := make(map[CabinClass]int, 3)
	for _, s := range seats {
		counts[s.Clase]++
	}
	return counts
}

// SortSeats orders seats by row number, then by letter.
func SortSeats(seats []Seat) {
	sort.Slice(seats, func(i, j int) bool {
		ri, li := splitSeatNumber(seats[i].NumeroAsiento)
		rj, lj := splitSeatNumber(seats[j].NumeroAsiento)
		if ri != rj {
			return ri < rj
		}
		return li < lj
	})
}

func maxRowNumber(seats []Seat) int {
	max := 0
	for _, s := range seats {
		if row, _ := splitSeatNumber(s.NumeroAsiento); row > max {
			max = row
		}
	}
	return max
}

func splitSeatNumber(num string) (row int, letter string) {
	i := 0
	for i < len(num) && num[i] >= '0' && num[i] <= '9' {
		i++
	}
	row, _ = strconv.Atoi(num[:i])
	return row, num[i:]
}
