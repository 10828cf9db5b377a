package risk

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		exposure  Exposure
		sector    string
		price     float64
		cash      float64
		value     float64
		wantQty   float64
		wantGrant float64
		wantAfter float64
	}{
		{
			name:      "remaining sector budget caps the grant",
			exposure:  Exposure{"Technology": 0.20},
			sector:    "Technology",
			price:     9.99,
			cash:      10_000,
			value:     100_000,
			wantQty:   500,
			wantGrant: 0.05,
			wantAfter: 0.25,
		},
		{
			name:      "new sector gets the single position cap",
			exposure:  Exposure{},
			sector:    "Energy",
			price:     24.9,
			cash:      50_000,
			value:     100_000,
			wantQty:   281,
			wantGrant: 0.07,
			wantAfter: 0.07,
		},
		{
			name:      "new sector limited by cash",
			exposure:  Exposure{},
			sector:    "Energy",
			price:     9.99,
			cash:      3_000,
			value:     100_000,
			wantQty:   300,
			wantGrant: 0.03,
			wantAfter: 0.03,
		},
		{
			name:      "existing sector limited by single cap",
			exposure:  Exposure{"Finance": 0.05},
			sector:    "Finance",
			price:     99.9,
			cash:      40_000,
			value:     100_000,
			wantQty:   70,
			wantGrant: 0.07,
			wantAfter: 0.12,
		},
		{
			name:      "sector at cap",
			exposure:  Exposure{"Finance": 0.25},
			sector:    "Finance",
			price:     100,
			cash:      40_000,
			value:     100_000,
			wantQty:   0,
			wantGrant: 0,
			wantAfter: 0.25,
		},
		{
			name:      "missing sector is unclassified",
			exposure:  Exposure{Unclassified: 0.24},
			sector:    "",
			price:     0.999,
			cash:      40_000,
			value:     100_000,
			wantQty:   1001,
			wantGrant: 0.01,
			wantAfter: 0.25,
		},
		{
			name:      "price above grant yields zero shares",
			exposure:  Exposure{},
			sector:    "Health Care",
			price:     10_000,
			cash:      5_000,
			value:     100_000,
			wantQty:   0,
			wantGrant: 0.05,
			wantAfter: 0.05,
		},
	}

	s := NewSizer(DefaultPolicy())
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := s.Size(tt.sector, tt.price, tt.cash, tt.value, tt.exposure)
			assert.InDelta(t, tt.wantQty, got.Quantity, 1e-9)
			assert.InDelta(t, tt.wantGrant, got.Exposure, 1e-9)
			assert.InDelta(t, tt.wantAfter, tt.exposure[SectorOrUnclassified(tt.sector)], 1e-9)
		})
	}
}

func TestSize_InvalidInputs(t *testing.T) {
	t.Parallel()

	s := NewSizer(DefaultPolicy())
	exp := Exposure{}

	assert.Equal(t, Allocation{}, s.Size("Energy", 0, 1000, 10_000, exp))
	assert.Equal(t, Allocation{}, s.Size("Energy", -5, 1000, 10_000, exp))
	assert.Equal(t, Allocation{}, s.Size("Energy", 5, 1000, 0, exp))
	assert.Empty(t, exp)
}

func TestSize_NegativeCashBuysNothing(t *testing.T) {
	t.Parallel()

	s := NewSizer(DefaultPolicy())
	got := s.Size("Energy", 10, -500, 10_000, Exposure{})
	assert.Equal(t, 0.0, got.Quantity)
}

func TestSize_NeverExceedsSectorCap(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	sectors := []string{"Technology", "Energy", "Finance", "Health Care"}

	for _, limit := range []float64{0.21, 0.25} {
		s := Sizer{MaxSectorExposure: limit, MaxSinglePosition: 0.07}
		exp := Exposure{}
		value := 1_000_000.0
		cash := value
		bought := map[string]float64{}

		for i := 0; i < 500; i++ {
			sector := sectors[rng.Intn(len(sectors))]
			price := 1 + rng.Float64()*500
			a := s.Size(sector, price, cash, value, exp)
			cash -= a.Quantity * price
			bought[sector] += a.Quantity * price / value

			assert.LessOrEqual(t, exp[sector], limit+0.0001)
			assert.LessOrEqual(t, bought[sector], limit+0.0001)
			assert.GreaterOrEqual(t, cash, -1e-6)
		}
	}
}
