// Package lineitem parses the "Name(qty)" micro-format of an order's product list.
//
// Entries are joined by ';'. The product name is the text before the first '(' and the
// quantity is the leading digit run of the trailing parenthetical, e.g. "Widget(2件)".
package lineitem

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Asus/TradeAnalytics/internal/entity"
)

const separator = ";"

var reQuantity = regexp.MustCompile(`\((\d+)[^\d]*\)$`)

// Entry is one parsed element of a product list. Parsed is false when the quantity
// could not be read; such entries still carry a name and quantity 1.
type Entry struct {
	Name     string
	Quantity int
	Raw      string
	Parsed   bool
}

// LineItem - позиция заказа, полученная из текста all_product_text
type LineItem struct {
	OrderID     string
	ProductName string
	Quantity    int
}

// Parse splits a product list into entries. Blank entries are skipped.
func Parse(text string) []Entry {
	parts := strings.Split(text, separator)
	entries := make([]Entry, 0, len(parts))
	for _, part := range parts {
		raw := strings.TrimSpace(part)
		if raw == "" {
			continue
		}
		entries = append(entries, parseEntry(raw))
	}
	return entries
}

func parseEntry(raw string) Entry {
	name := raw
	if i := strings.Index(raw, "("); i >= 0 {
		name = strings.TrimSpace(raw[:i])
	}
	if name == "" {
		name = raw
	}

	e := Entry{Name: name, Quantity: 1, Raw: raw}
	m := reQuantity.FindStringSubmatch(raw)
	if m == nil {
		return e
	}
	qty, err := strconv.Atoi(m[1])
	if err != nil || qty <= 0 {
		return e
	}
	e.Quantity = qty
	e.Parsed = true
	return e
}

// Explode turns one order's product list into line items.
func Explode(orderID, text string) []LineItem {
	entries := Parse(text)
	items := make([]LineItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, LineItem{OrderID: orderID, ProductName: e.Name, Quantity: e.Quantity})
	}
	return items
}

// ExplodeOrders explodes every order in load order.
func ExplodeOrders(orders []entity.ScoredOrder) []LineItem {
	var items []LineItem
	for _, o := range orders {
		items = append(items, Explode(o.OrderID, o.AllProductText)...)
	}
	return items
}

// ProductQuantity - суммарное количество товара в группе
type ProductQuantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

func (p ProductQuantity) String() string {
	return p.Name + "(" + strconv.Itoa(p.Quantity) + ")"
}

// Tally sums quantities per product name, keeping first-encounter order.
type Tally struct {
	index map[string]int
	items []ProductQuantity
}

func NewTally() *Tally {
	return &Tally{index: make(map[string]int)}
}

func (t *Tally) Add(name string, qty int) {
	i, ok := t.index[name]
	if !ok {
		t.index[name] = len(t.items)
		t.items = append(t.items, ProductQuantity{Name: name})
		i = len(t.items) - 1
	}
	t.items[i].Quantity += qty
}

// Items returns the accumulated quantities in first-encounter order.
func (t *Tally) Items() []ProductQuantity {
	return t.items
}
