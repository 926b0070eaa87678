package scoring

import (
	"testing"
	"time"

	"github.com/Asus/TradeAnalytics/internal/entity"
	"github.com/stretchr/testify/assert"
)

var created = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestScore(t *testing.T) {
	testCases := []struct {
		name      string
		order     entity.Order
		wantTotal float64
		wantGrade entity.Grade
	}{
		{
			name:      "closed small order",
			order:     entity.Order{Status: entity.StatusClosed},
			wantTotal: -90,
			wantGrade: entity.GradeF,
		},
		{
			name:      "closed order with amount bonus",
			order:     entity.Order{Status: entity.StatusClosed, MerchandiseTotal: 400},
			wantTotal: -59,
			wantGrade: entity.GradeF,
		},
		{
			name:      "closed order at the D boundary",
			order:     entity.Order{Status: entity.StatusClosed, MerchandiseTotal: 1500},
			wantTotal: -50,
			wantGrade: entity.GradeD,
		},
		{
			name:      "shipped free shipping high amount",
			order:     entity.Order{Status: entity.StatusShipped, MerchandiseTotal: 250},
			wantTotal: 88,
			wantGrade: entity.GradeA,
		},
		{
			name:      "shipped cheap shipping",
			order:     entity.Order{Status: entity.StatusShipped, MerchandiseTotal: 120, ShippingFee: 3},
			wantTotal: 72.5,
			wantGrade: entity.GradeA,
		},
		{
			name:      "pending shipment gets no potential bonus",
			order:     entity.Order{Status: entity.StatusPendingShipment, MerchandiseTotal: 150, ShippingFee: 15},
			wantTotal: 60,
			wantGrade: entity.GradeB,
		},
		{
			name: "completed in half a week",
			order: entity.Order{
				Status:           entity.StatusCompleted,
				CreatedAt:        entity.NewNullTime(created),
				CompletedAt:      entity.NewNullTime(created.Add(84 * time.Hour)),
				MerchandiseTotal: 350,
				ShippingFee:      7,
			},
			wantTotal: 83,
			wantGrade: entity.GradeA,
		},
		{
			name:      "completed without completion time is worst case",
			order:     entity.Order{Status: entity.StatusCompleted, CreatedAt: entity.NewNullTime(created), MerchandiseTotal: 20, ShippingFee: 5},
			wantTotal: 40,
			wantGrade: entity.GradeC,
		},
		{
			name:      "zero merchandise ignores shipping fee",
			order:     entity.Order{Status: entity.StatusCompleted, ShippingFee: 50},
			wantTotal: 50,
			wantGrade: entity.GradeB,
		},
		{
			name:      "unknown status is scored like completed",
			order:     entity.Order{Status: entity.Status("refunding"), MerchandiseTotal: 10},
			wantTotal: 50,
			wantGrade: entity.GradeB,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := Score(tc.order)
			assert.Equal(t, tc.wantTotal, b.Total)
			assert.Equal(t, tc.wantGrade, Grade(b.Total))
		})
	}
}

func TestClosedStatusComponent(t *testing.T) {
	for _, amount := range []float64{0, 49, 120, 300, 5000} {
		b := Score(entity.Order{Status: entity.StatusClosed, MerchandiseTotal: amount, ShippingFee: 8})
		assert.Equal(t, -100.0, b.Status)
		assert.Equal(t, Grade(b.Total), func() entity.Grade {
			if b.Total < -50 {
				return entity.GradeF
			}
			return entity.GradeD
		}())
	}
}

func TestShippingZeroWhenNoMerchandise(t *testing.T) {
	for _, fee := range []float64{0, 1, 10, 1000} {
		for _, status := range []entity.Status{entity.StatusCompleted, entity.StatusShipped, entity.StatusClosed} {
			b := Score(entity.Order{Status: status, ShippingFee: fee})
			assert.Zero(t, b.Shipping, "fee=%v status=%s", fee, status)
		}
	}
}

func TestGradeBins(t *testing.T) {
	assert.Equal(t, entity.GradeF, Grade(-50.01))
	assert.Equal(t, entity.GradeD, Grade(-50))
	assert.Equal(t, entity.GradeD, Grade(-0.01))
	assert.Equal(t, entity.GradeC, Grade(0))
	assert.Equal(t, entity.GradeB, Grade(50))
	assert.Equal(t, entity.GradeA, Grade(70))
	assert.Equal(t, entity.GradeA, Grade(89.99))
	assert.Equal(t, entity.GradeS, Grade(90))
}

func TestGradeMonotonic(t *testing.T) {
	prev := Grade(-200).Rank()
	for s := -200.0; s <= 200; s += 0.25 {
		r := Grade(s).Rank()
		if r < prev {
			t.Fatalf("grade decreased at score %v", s)
		}
		prev = r
	}
}

func TestScoreOrders(t *testing.T) {
	orders := []entity.Order{
		{OrderID: "a", Status: entity.StatusClosed},
		{OrderID: "b", Status: entity.StatusShipped, MerchandiseTotal: 250},
	}

	scored := ScoreOrders(orders)

	assert.Len(t, scored, 2)
	assert.Equal(t, "a", scored[0].OrderID)
	assert.Equal(t, entity.GradeF, scored[0].QualityGrade)
	assert.Equal(t, 88.0, scored[1].QualityScore)
}
