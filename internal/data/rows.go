package data

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
)

// Makes is the pool of vehicle makes rows cycle through.
var Makes = []string{"Toyota", "Ford", "Porsche", "BMW", "Mercedes"}

// Models is the pool of vehicle models rows cycle through.
var Models = []string{"A", "B", "C", "D", "E"}

// maxPrice bounds generated prices, inclusive.
const maxPrice = 1000000

// Row is a single synthetic grid row.
type Row struct {
	ID       int
	Make     string
	Model    string
	Price    int
	Value    float64
	ImageURL string
}

// Generator produces synthetic rows from a seedable random source.
type Generator struct {
	rand  *rand.Rand
	mutex sync.Mutex
}

// NewGenerator creates a generator seeded with seed. Two generators with the same seed produce
// identical rows.
func NewGenerator(seed int64) *Generator {
	return &Generator{rand: rand.New(rand.NewSource(seed))}
}

// Rows generates count rows with IDs 1 through count. Makes and models cycle through their pools
// by row index; prices and values are random.
func (g *Generator) Rows(count int) []Row {
	if count <= 0 {
		return nil
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	rows := make([]Row, count)
	for i := range rows {
		vehicleMake := Makes[i%len(Makes)]

		rows[i] = Row{
			ID:       i + 1,
			Make:     vehicleMake,
			Model:    Models[i%len(Models)],
			Price:    g.rand.Intn(maxPrice + 1),
			Value:    math.Round(g.rand.Float64()*1e4) / 1e4,
			ImageURL: ImageURL(vehicleMake),
		}
	}

	return rows
}

// PlaceholderRows creates count rows for delta updates. IDs continue from offset+1, where offset is
// normally MaxID of the current rows, and every other field is a placeholder.
func PlaceholderRows(offset int, count int) []Row {
	if count <= 0 {
		return nil
	}

	rows := make([]Row, count)
	for i := range rows {
		rows[i] = Row{ID: offset + i + 1, Make: "New", Model: "X"}
	}

	return rows
}

// MaxID returns the largest row ID in rows, or 0 for no rows.
func MaxID(rows []Row) int {
	highest := 0
	for _, row := range rows {
		if row.ID > highest {
			highest = row.ID
		}
	}

	return highest
}

// ImageURL returns the asset path of the photo associated with a make.
func ImageURL(vehicleMake string) string {
	return fmt.Sprintf("assets/car-images/%s.png", strings.ToLower(vehicleMake))
}
