// сущности общие для всех слоёв: источники отдают RawTable,
// нормализатор превращает их в Order / ProductRecord, аналитика работает только с ними

package entity

import (
	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()
}

// Status - каноническое значение статуса заказа
type Status string

const (
	StatusCompleted       Status = "completed"
	StatusShipped         Status = "shipped"
	StatusPendingShipment Status = "pending_shipment"
	StatusClosed          Status = "closed"
	StatusCanceled        Status = "canceled"
	StatusUnknown         Status = "unknown"
)

// Valid reports whether an order with this status counts toward spend and quality.
func (s Status) Valid() bool {
	return s != StatusClosed
}

// Canceled reports whether the status counts as a cancellation for product analytics.
func (s Status) Canceled() bool {
	return s == StatusClosed || s == StatusCanceled
}

// Grade - буквенная оценка качества заказа, упорядочена F < D < C < B < A < S
type Grade string

const (
	GradeF Grade = "F"
	GradeD Grade = "D"
	GradeC Grade = "C"
	GradeB Grade = "B"
	GradeA Grade = "A"
	GradeS Grade = "S"
)

var gradeRank = map[Grade]int{GradeF: 0, GradeD: 1, GradeC: 2, GradeB: 3, GradeA: 4, GradeS: 5}

// Rank returns the position of the grade in the F..S order, -1 for unknown grades.
func (g Grade) Rank() int {
	r, ok := gradeRank[g]
	if !ok {
		return -1
	}
	return r
}

// Order - каноническая строка заказа после нормализации
type Order struct {
	OrderID          string   `json:"order_id"`
	Status           Status   `json:"status"`
	CreatedAt        NullTime `json:"created_at"`
	PaidAt           NullTime `json:"paid_at"`
	CompletedAt      NullTime `json:"completed_at"`
	AllProductText   string   `json:"all_product_text"`
	ItemTypeCount    int      `json:"item_type_count"`
	ItemUnitCount    int      `json:"item_unit_count"`
	ShippingFee      float64  `json:"shipping_fee"`
	DiscountTotal    float64  `json:"discount_total"`
	MerchandiseTotal float64  `json:"merchandise_total"`
	CustomerID       string   `json:"customer_id"`
	MemberLevel      string   `json:"member_level"`
	OrderCountRaw    int      `json:"order_count_raw"`
	Phone            string   `json:"phone"`
	Remark           string   `json:"remark"`
	Province         string   `json:"province"`
	City             string   `json:"city"`
	District         string   `json:"district"`
}

// ScoredOrder - заказ с оценкой качества
type ScoredOrder struct {
	Order
	QualityScore float64 `json:"quality_score"`
	QualityGrade Grade   `json:"quality_grade"`
}

// ProductRecord - строка позиции заказа, соединённая с товаром, категорией и статусом заказа
type ProductRecord struct {
	OrderID     string   `json:"order_id" validate:"required"`
	ProductID   string   `json:"product_id" validate:"required"`
	ProductName string   `json:"product_name"`
	Category1   string   `json:"category1"`
	Category2   string   `json:"category2"`
	Category3   string   `json:"category3"`
	UnitPrice   float64  `json:"unit_price" validate:"gte=0"`
	Quantity    int      `json:"quantity" validate:"gte=0"`
	Status      Status   `json:"status"`
	CreatedAt   NullTime `json:"created_at"`
}

// SalesAmount is quantity times unit price.
func (r ProductRecord) SalesAmount() float64 {
	return float64(r.Quantity) * r.UnitPrice
}

// канонические имена колонок, по которым источники раскладывают сырые строки
const (
	ColOrderID          = "order_id"
	ColStatus           = "status"
	ColCreatedAt        = "created_at"
	ColPaidAt           = "paid_at"
	ColCompletedAt      = "completed_at"
	ColAllProductText   = "all_product_text"
	ColItemTypeCount    = "item_type_count"
	ColItemUnitCount    = "item_unit_count"
	ColShippingFee      = "shipping_fee"
	ColDiscountTotal    = "discount_total"
	ColMerchandiseTotal = "merchandise_total"
	ColCustomerID       = "customer_id"
	ColMemberLevel      = "member_level"
	ColOrderCountRaw    = "order_count_raw"
	ColPhone            = "phone"
	ColRemark           = "remark"
	ColProvince         = "province"
	ColCity             = "city"
	ColDistrict         = "district"

	ColProductID   = "product_id"
	ColProductName = "product_name"
	ColCategory1   = "category1"
	ColCategory2   = "category2"
	ColCategory3   = "category3"
	ColUnitPrice   = "unit_price"
	ColQuantity    = "quantity"
)

// OrderColumns is the canonical column set of the order table in load order.
var OrderColumns = []string{
	ColOrderID, ColStatus, ColCreatedAt, ColPaidAt, ColCompletedAt, ColAllProductText,
	ColItemTypeCount, ColItemUnitCount, ColShippingFee, ColDiscountTotal, ColMerchandiseTotal,
	ColCustomerID, ColMemberLevel, ColOrderCountRaw, ColPhone, ColRemark,
	ColProvince, ColCity, ColDistrict,
}

// ProductColumns is the canonical column set of the joined order-item table.
var ProductColumns = []string{
	ColOrderID, ColProductID, ColProductName, ColCategory1, ColCategory2, ColCategory3,
	ColQuantity, ColUnitPrice, ColStatus, ColCreatedAt,
}

// RawRecord - сырая строка источника: string, []byte, числа, time.Time или nil
type RawRecord map[string]any

// RawTable - сырые данные источника в порядке загрузки
type RawTable struct {
	Columns []string
	Rows    []RawRecord
}

// HasColumn reports whether the table declares the column.
func (t RawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
