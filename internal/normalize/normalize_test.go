package normalize

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Asus/TradeAnalytics/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shanghai = time.FixedZone("CST", 8*3600)

func orderTable(rows ...entity.RawRecord) entity.RawTable {
	return entity.RawTable{Columns: entity.OrderColumns, Rows: rows}
}

func TestOrdersMissingColumn(t *testing.T) {
	n := NewNormalizer(shanghai)

	_, err := n.Orders(entity.RawTable{Columns: []string{entity.ColOrderID, entity.ColStatus}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), entity.ColCreatedAt)
	assert.Contains(t, err.Error(), entity.ColMerchandiseTotal)
}

func TestOrdersCoercion(t *testing.T) {
	n := NewNormalizer(shanghai)
	paid := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	orders, err := n.Orders(orderTable(entity.RawRecord{
		entity.ColOrderID:          " 1001 ",
		entity.ColStatus:           "交易完成",
		entity.ColCreatedAt:        "2025/06/01 08:15",
		entity.ColPaidAt:           paid,
		entity.ColCompletedAt:      "not a date",
		entity.ColAllProductText:   "Widget(2)",
		entity.ColItemTypeCount:    int64(1),
		entity.ColItemUnitCount:    "2",
		entity.ColShippingFee:      "-5",
		entity.ColDiscountTotal:    []byte("3.50"),
		entity.ColMerchandiseTotal: "¥1,288.00",
		entity.ColCustomerID:       "buyer_a",
		entity.ColOrderCountRaw:    "第3次",
		entity.ColPhone:            13800138000.0,
		entity.ColProvince:         "nan",
		entity.ColCity:             "  上海市 ",
		entity.ColDistrict:         nil,
	}))
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "1001", o.OrderID)
	assert.Equal(t, entity.StatusCompleted, o.Status)
	require.True(t, o.CreatedAt.Valid)
	assert.Equal(t, time.Date(2025, 6, 1, 8, 15, 0, 0, shanghai).Unix(), o.CreatedAt.Time.Unix())
	assert.Equal(t, entity.NewNullTime(paid), o.PaidAt)
	assert.False(t, o.CompletedAt.Valid)
	assert.Equal(t, 1, o.ItemTypeCount)
	assert.Equal(t, 2, o.ItemUnitCount)
	assert.Equal(t, 0.0, o.ShippingFee)
	assert.Equal(t, 3.5, o.DiscountTotal)
	assert.Equal(t, 1288.0, o.MerchandiseTotal)
	assert.Equal(t, 3, o.OrderCountRaw)
	assert.Equal(t, "13800138000", o.Phone)
	assert.Equal(t, UnknownPlace, o.Province)
	assert.Equal(t, "上海市", o.City)
	assert.Equal(t, UnknownPlace, o.District)
	assert.Equal(t, "", o.MemberLevel)
}

func TestOrdersUnparseableValues(t *testing.T) {
	n := NewNormalizer(nil)

	orders, err := n.Orders(orderTable(entity.RawRecord{
		entity.ColOrderID:          "x",
		entity.ColStatus:           nil,
		entity.ColCreatedAt:        "",
		entity.ColMerchandiseTotal: "abc",
		entity.ColShippingFee:      "NaN",
		entity.ColProvince:         "None",
		entity.ColCity:             "",
	}))
	require.NoError(t, err)

	o := orders[0]
	assert.Equal(t, entity.StatusUnknown, o.Status)
	assert.False(t, o.CreatedAt.Valid)
	assert.Zero(t, o.MerchandiseTotal)
	assert.Zero(t, o.ShippingFee)
	assert.Equal(t, UnknownPlace, o.Province)
	assert.Equal(t, UnknownPlace, o.City)
}

func TestOrdersOverflowingNumbers(t *testing.T) {
	n := NewNormalizer(nil)

	orders, err := n.Orders(orderTable(entity.RawRecord{
		entity.ColOrderID:          "x",
		entity.ColStatus:           "交易完成",
		entity.ColCreatedAt:        "2025-06-01 08:15:00",
		entity.ColMerchandiseTotal: "1e400",
		entity.ColShippingFee:      "-1e400",
		entity.ColDiscountTotal:    "1e400",
		entity.ColItemUnitCount:    "1e400",
	}))
	require.NoError(t, err)

	o := orders[0]
	assert.Zero(t, o.MerchandiseTotal)
	assert.Zero(t, o.ShippingFee)
	assert.Zero(t, o.DiscountTotal)
	assert.Zero(t, o.ItemUnitCount)

	_, err = json.Marshal(o)
	assert.NoError(t, err)
}

func TestStatus(t *testing.T) {
	testCases := []struct {
		in   any
		want entity.Status
	}{
		{"交易关闭", entity.StatusClosed},
		{"已发货", entity.StatusShipped},
		{"待发货", entity.StatusPendingShipment},
		{"已取消", entity.StatusCanceled},
		{" Completed ", entity.StatusCompleted},
		{"CANCELLED", entity.StatusCanceled},
		{"Refunding", entity.Status("refunding")},
		{"", entity.StatusUnknown},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Status(tc.in), "input %v", tc.in)
	}
}

func TestProductRecords(t *testing.T) {
	n := NewNormalizer(shanghai)
	table := entity.RawTable{
		Columns: entity.ProductColumns,
		Rows: []entity.RawRecord{
			{
				entity.ColOrderID: "1", entity.ColProductID: "p1", entity.ColProductName: "Widget",
				entity.ColCategory1: "Food", entity.ColCategory2: nil, entity.ColCategory3: "",
				entity.ColQuantity: "2", entity.ColUnitPrice: 9.9, entity.ColStatus: "交易完成",
				entity.ColCreatedAt: "2025-06-01 14:05:00",
			},
			{
				entity.ColOrderID: "2", entity.ColProductID: "", entity.ColProductName: "Ghost",
				entity.ColQuantity: 1, entity.ColUnitPrice: 1, entity.ColStatus: "交易完成",
				entity.ColCreatedAt: "2025-06-01 14:05:00",
			},
			{
				entity.ColOrderID: "3", entity.ColProductID: "p2", entity.ColProductName: nil,
				entity.ColQuantity: -4, entity.ColUnitPrice: "oops", entity.ColStatus: "已取消",
				entity.ColCreatedAt: nil,
			},
		},
	}

	records, err := n.ProductRecords(table)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Widget", records[0].ProductName)
	assert.Equal(t, "Food", records[0].Category1)
	assert.Equal(t, UnknownPlace, records[0].Category2)
	assert.Equal(t, UnknownPlace, records[0].Category3)
	assert.Equal(t, 2, records[0].Quantity)
	assert.InDelta(t, 19.8, records[0].SalesAmount(), 1e-9)
	assert.Equal(t, 14, records[0].CreatedAt.Time.Hour())

	assert.Equal(t, "p2", records[1].ProductName)
	assert.Equal(t, 0, records[1].Quantity)
	assert.Zero(t, records[1].UnitPrice)
	assert.Equal(t, entity.StatusCanceled, records[1].Status)
	assert.False(t, records[1].CreatedAt.Valid)
}

func TestProductRecordsMissingColumn(t *testing.T) {
	n := NewNormalizer(shanghai)

	_, err := n.ProductRecords(entity.RawTable{Columns: []string{entity.ColOrderID}})

	assert.ErrorIs(t, err, ErrMissingColumn)
}
