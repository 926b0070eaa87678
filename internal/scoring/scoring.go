// Package scoring computes the per-order quality score and letter grade.
package scoring

import (
	"math"

	"github.com/Asus/TradeAnalytics/internal/entity"
	"github.com/Asus/TradeAnalytics/internal/numeric"
)

const (
	closedScore     = -100.0
	shippedScore    = 40.0
	completedBase   = 40.0
	speedBonusMax   = 10.0
	worstCycleHours = 168.0 // неделя

	shippingPenaltyMax = 10.0
	potentialBonusMax  = 10.0
)

// Breakdown - вклад каждого фактора в итоговую оценку
type Breakdown struct {
	Status    float64
	Shipping  float64
	Amount    float64
	Potential float64
	Total     float64 // округлено до 2 знаков
}

// Score computes the quality score of a single order. It depends only on the order's fields.
func Score(o entity.Order) Breakdown {
	b := Breakdown{
		Status:   statusScore(o),
		Shipping: shippingScore(o.ShippingFee, o.MerchandiseTotal),
		Amount:   amountScore(o.MerchandiseTotal),
	}
	if o.Status == entity.StatusShipped {
		b.Potential = potentialBonus(o.ShippingFee, o.MerchandiseTotal)
	}
	b.Total = numeric.Round(b.Status+b.Shipping+b.Amount+b.Potential, 2)
	return b
}

func statusScore(o entity.Order) float64 {
	switch o.Status {
	case entity.StatusClosed:
		return closedScore
	case entity.StatusShipped, entity.StatusPendingShipment:
		return shippedScore
	}
	// завершённые и все прочие статусы: база + бонус за скорость
	cycle := worstCycleHours
	if o.CreatedAt.Valid && o.CompletedAt.Valid {
		cycle = o.CompletedAt.Time.Sub(o.CreatedAt.Time).Hours()
	}
	return completedBase + speedBonusMax*(1-math.Min(1, cycle/worstCycleHours))
}

func shippingScore(fee, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	ratio := fee / amount
	return -shippingPenaltyMax * math.Min(1, ratio*10)
}

func amountScore(amount float64) float64 {
	switch {
	case amount < 50:
		return 10
	case amount < 100:
		return 20
	case amount < 200:
		return 30
	case amount < 300:
		return 40
	}
	return 40 + math.Min(10, math.Floor((amount-300)/100))
}

func potentialBonus(fee, amount float64) float64 {
	bonus := 0.0
	if amount > 200 {
		bonus += 5
	} else if amount > 100 {
		bonus += 3
	}
	if fee == 0 {
		bonus += 3
	} else if amount > 0 && fee/amount < 0.05 {
		bonus += 2
	}
	return math.Min(potentialBonusMax, bonus)
}

// Grade maps a score onto the right-open bins
// (-inf,-50) F, [-50,0) D, [0,50) C, [50,70) B, [70,90) A, [90,+inf) S.
func Grade(score float64) entity.Grade {
	switch {
	case score < -50:
		return entity.GradeF
	case score < 0:
		return entity.GradeD
	case score < 50:
		return entity.GradeC
	case score < 70:
		return entity.GradeB
	case score < 90:
		return entity.GradeA
	}
	return entity.GradeS
}

// ScoreOrders scores every order, preserving order.
func ScoreOrders(orders []entity.Order) []entity.ScoredOrder {
	out := make([]entity.ScoredOrder, 0, len(orders))
	for _, o := range orders {
		total := Score(o).Total
		out = append(out, entity.ScoredOrder{
			Order:        o,
			QualityScore: total,
			QualityGrade: Grade(total),
		})
	}
	return out
}
