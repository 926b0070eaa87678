package topn

import (
	"container/heap"
)

// Item - элемент приоритетной очереди
type Item[T any] struct {
	Value    T
	Priority float64
	Index    int // индекс элемента в куче
	seq      int // порядок появления, нужен для стабильного выбора при равных приоритетах
}

// PriorityQueue реализует heap.Interface. На вершине лежит "худший" элемент:
// с наименьшим приоритетом, а при равенстве - появившийся позже.
type PriorityQueue[T any] []*Item[T]

func (pq *PriorityQueue[T]) Len() int { return len(*pq) }

func (pq *PriorityQueue[T]) Less(i, j int) bool {
	a, b := (*pq)[i], (*pq)[j]
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.seq > b.seq
}

func (pq *PriorityQueue[T]) Swap(i, j int) {
	(*pq)[i], (*pq)[j] = (*pq)[j], (*pq)[i]
	(*pq)[i].Index = i
	(*pq)[j].Index = j
}

func (pq *PriorityQueue[T]) Push(x any) {
	n := len(*pq)
	item := x.(*Item[T])
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *PriorityQueue[T]) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // избегаем утечки памяти
	item.Index = -1 // для безопасности
	*pq = old[0 : n-1]
	return item
}

// Selector keeps the n values with the highest priority seen so far.
// Equal priorities are resolved in favour of the value pushed first.
type Selector[T any] struct {
	pq  PriorityQueue[T]
	n   int
	seq int
}

func NewSelector[T any](n int) *Selector[T] {
	if n < 0 {
		n = 0
	}
	s := &Selector[T]{
		pq: make(PriorityQueue[T], 0, n),
		n:  n,
	}
	heap.Init(&s.pq)
	return s
}

// Push offers a value; it is kept only while it stays among the top n.
func (s *Selector[T]) Push(value T, priority float64) {
	item := &Item[T]{Value: value, Priority: priority, seq: s.seq}
	s.seq++
	if s.n == 0 {
		return
	}
	if s.pq.Len() < s.n {
		heap.Push(&s.pq, item)
		return
	}
	// вершина - худший из оставленных; новый элемент при равенстве проигрывает (он позже)
	worst := s.pq[0]
	if priority > worst.Priority {
		s.pq[0] = item
		item.Index = 0
		heap.Fix(&s.pq, 0)
	}
}

func (s *Selector[T]) Len() int {
	return s.pq.Len()
}

// Result drains the selector and returns the kept values, best first.
func (s *Selector[T]) Result() []T {
	out := make([]T, s.pq.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&s.pq).(*Item[T]).Value
	}
	return out
}

// Select returns the n best values by priority, keeping input order on ties.
func Select[T any](values []T, n int, priority func(T) float64) []T {
	s := NewSelector[T](n)
	for _, v := range values {
		s.Push(v, priority(v))
	}
	return s.Result()
}
