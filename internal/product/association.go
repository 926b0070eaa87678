package product

import (
	"cmp"
	"log/slog"
	"math/bits"
	"slices"
	"strconv"
	"strings"

	"github.com/Asus/TradeAnalytics/internal/entity"
	"github.com/Asus/TradeAnalytics/internal/numeric"
)

// Itemset - набор товаров, которые часто покупают вместе
type Itemset struct {
	Items   []string `json:"items"`
	Label   string   `json:"itemsets"`
	Count   int      `json:"count"`
	Support float64  `json:"support"` // в процентах от числа транзакций
}

// bitset is one column of the transaction/item incidence matrix: bit t is set when
// transaction t contains the item.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

func (b bitset) and(o bitset) bitset {
	out := make(bitset, len(b))
	for i := range b {
		out[i] = b[i] & o[i]
	}
	return out
}

func (b bitset) count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

type candidate struct {
	items []int // индексы товаров по возрастанию
	rows  bitset
	count int
}

func itemsKey(items []int) string {
	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(it))
	}
	return sb.String()
}

// Transactions builds one transaction per completed order: the distinct product names
// of that order, in order of appearance.
func Transactions(records []entity.ProductRecord) [][]string {
	index := make(map[string]int)
	var txs [][]string
	var seen []map[string]struct{}
	for _, r := range records {
		if r.Status != entity.StatusCompleted {
			continue
		}
		i, ok := index[r.OrderID]
		if !ok {
			i = len(txs)
			index[r.OrderID] = i
			txs = append(txs, nil)
			seen = append(seen, make(map[string]struct{}))
		}
		if _, dup := seen[i][r.ProductName]; dup {
			continue
		}
		seen[i][r.ProductName] = struct{}{}
		txs[i] = append(txs[i], r.ProductName)
	}
	return txs
}

// Association mines frequent itemsets of size two or more from completed orders with
// Apriori. Sets are ordered by support descending, then by size, then by name, and
// capped at the configured top N.
func (a *Analyzer) Association(records []entity.ProductRecord) []Itemset {
	txs := Transactions(records)
	if len(txs) == 0 {
		slog.Warn("association analysis: no completed orders")
		return []Itemset{}
	}

	sets := FrequentItemsets(txs, a.cfg.MinSupport)
	out := make([]Itemset, 0, len(sets))
	for _, s := range sets {
		if len(s.Items) >= 2 {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(x, y Itemset) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(len(x.Items), len(y.Items)); c != 0 {
			return c
		}
		return slices.Compare(x.Items, y.Items)
	})
	if len(out) > a.cfg.AssociationTopN {
		out = out[:a.cfg.AssociationTopN]
	}
	slog.Debug("association analysis done", "transactions", len(txs), "itemsets", len(out))
	return out
}

// FrequentItemsets returns every itemset whose support (share of transactions that
// contain it) is at least minSupport, single items included.
func FrequentItemsets(txs [][]string, minSupport float64) []Itemset {
	n := len(txs)
	if n == 0 {
		return nil
	}

	names := distinctSorted(txs)
	pos := make(map[string]int, len(names))
	columns := make([]bitset, len(names))
	for i, name := range names {
		pos[name] = i
		columns[i] = newBitset(n)
	}
	for t, tx := range txs {
		for _, name := range tx {
			columns[pos[name]].set(t)
		}
	}

	frequent := func(count int) bool {
		return float64(count)/float64(n) >= minSupport
	}

	var level []candidate
	for i, col := range columns {
		if c := col.count(); frequent(c) {
			level = append(level, candidate{items: []int{i}, rows: col, count: c})
		}
	}

	var all []candidate
	for len(level) > 0 {
		all = append(all, level...)
		level = nextLevel(level, frequent)
	}

	out := make([]Itemset, 0, len(all))
	for _, c := range all {
		items := make([]string, len(c.items))
		for i, it := range c.items {
			items[i] = names[it]
		}
		out = append(out, Itemset{
			Items:   items,
			Label:   strings.Join(items, ", "),
			Count:   c.count,
			Support: numeric.Round(float64(c.count)/float64(n)*100, 4),
		})
	}
	return out
}

// nextLevel joins k-itemsets sharing their first k-1 items, drops candidates with an
// infrequent k-subset and keeps those that meet the support threshold.
func nextLevel(level []candidate, frequent func(int) bool) []candidate {
	known := make(map[string]struct{}, len(level))
	for _, c := range level {
		known[itemsKey(c.items)] = struct{}{}
	}

	var next []candidate
	for i := 0; i < len(level); i++ {
		for j := i + 1; j < len(level); j++ {
			a, b := level[i].items, level[j].items
			k := len(a)
			if !slices.Equal(a[:k-1], b[:k-1]) {
				// уровень отсортирован, дальше общих префиксов не будет
				break
			}
			items := make([]int, k+1)
			copy(items, a)
			items[k] = b[k-1]
			if items[k-1] > items[k] {
				items[k-1], items[k] = items[k], items[k-1]
			}
			if !subsetsKnown(items, known) {
				continue
			}
			rows := level[i].rows.and(level[j].rows)
			if c := rows.count(); frequent(c) {
				next = append(next, candidate{items: items, rows: rows, count: c})
			}
		}
	}
	return next
}

func subsetsKnown(items []int, known map[string]struct{}) bool {
	if len(items) <= 2 {
		return true
	}
	sub := make([]int, 0, len(items)-1)
	for skip := range items {
		sub = sub[:0]
		for i, it := range items {
			if i != skip {
				sub = append(sub, it)
			}
		}
		if _, ok := known[itemsKey(sub)]; !ok {
			return false
		}
	}
	return true
}

func distinctSorted(txs [][]string) []string {
	set := make(map[string]struct{})
	for _, tx := range txs {
		for _, name := range tx {
			set[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
