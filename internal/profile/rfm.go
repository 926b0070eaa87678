package profile

import (
	"slices"

	"github.com/Asus/TradeAnalytics/internal/numeric"
)

var (
	tertiles = []float64{1.0 / 3, 2.0 / 3}
	halves   = []float64{0.5}
)

// scoreRFM buckets R and M into tertiles and F into halves. Cut-points come from the
// profiles passed in, so the same customer can score differently against another
// population. Recency is inverted: the most recent third scores 3. A customer with no
// dated valid order gets R = 1.
func scoreRFM(profiles []Profile) {
	if len(profiles) == 0 {
		return
	}

	var recency, frequency, monetary []float64
	for _, p := range profiles {
		if p.RFM.hasRecency {
			recency = append(recency, float64(p.RFM.RecencyDays))
		}
		frequency = append(frequency, float64(p.RFM.Frequency))
		monetary = append(monetary, p.RFM.Monetary)
	}
	rCuts := cutPoints(recency, tertiles)
	fCuts := cutPoints(frequency, halves)
	mCuts := cutPoints(monetary, tertiles)

	for i := range profiles {
		rfm := &profiles[i].RFM
		rfm.R = 1
		if rfm.hasRecency {
			rfm.R = len(tertiles) + 1 - numeric.Bucket(float64(rfm.RecencyDays), rCuts)
		}
		rfm.F = numeric.Bucket(float64(rfm.Frequency), fCuts) + 1
		rfm.M = numeric.Bucket(rfm.Monetary, mCuts) + 1
		profiles[i].RFMScore = rfm.R + rfm.F + rfm.M
	}
}

func cutPoints(values []float64, qs []float64) []float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	cuts := make([]float64, len(qs))
	for i, q := range qs {
		cuts[i] = numeric.Percentile(sorted, q)
	}
	return cuts
}
