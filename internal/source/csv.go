// Package source reads the trade tables from flat files exported by the shop backend.
package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/Asus/TradeAnalytics/internal/entity"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// заголовки выгрузки магазина и таблиц БД, приведённые к каноническим именам
var headerAliases = map[string]string{
	"订单号":            entity.ColOrderID,
	"orderid":        entity.ColOrderID,
	"订单状态":           entity.ColStatus,
	"status":         entity.ColStatus,
	"订单创建时间":         entity.ColCreatedAt,
	"created_time":   entity.ColCreatedAt,
	"买家付款时间":         entity.ColPaidAt,
	"payment_time":   entity.ColPaidAt,
	"交易成功时间":         entity.ColCompletedAt,
	"completed_time": entity.ColCompletedAt,
	"全部商品名称":         entity.ColAllProductText,
	"allproduct":     entity.ColAllProductText,
	"商品种类数":          entity.ColItemTypeCount,
	"pdnumber":       entity.ColItemTypeCount,
	"订单商品总件数":        entity.ColItemUnitCount,
	"totalnumber":    entity.ColItemUnitCount,
	"运费":             entity.ColShippingFee,
	"freight":        entity.ColShippingFee,
	"店铺优惠合计":         entity.ColDiscountTotal,
	"discount":       entity.ColDiscountTotal,
	"商品金额合计":         entity.ColMerchandiseTotal,
	"totalamount":    entity.ColMerchandiseTotal,
	"买家昵称":           entity.ColCustomerID,
	"customer_id":    entity.ColCustomerID,
	"会员等级":           entity.ColMemberLevel,
	"memberlevel":    entity.ColMemberLevel,
	"下单次数":           entity.ColOrderCountRaw,
	"order_count":    entity.ColOrderCountRaw,
	"联系手机":           entity.ColPhone,
	"手机号":            entity.ColPhone,
	"phone":          entity.ColPhone,
	"订单备注":           entity.ColRemark,
	"remark":         entity.ColRemark,
	"收货人省份":          entity.ColProvince,
	"province":       entity.ColProvince,
	"收货人城市":          entity.ColCity,
	"city":           entity.ColCity,
	"收货人地区":          entity.ColDistrict,
	"district":       entity.ColDistrict,

	"商品id":        entity.ColProductID,
	"productid":   entity.ColProductID,
	"商品名称":        entity.ColProductName,
	"productname": entity.ColProductName,
	"一级分类":        entity.ColCategory1,
	"二级分类":        entity.ColCategory2,
	"三级分类":        entity.ColCategory3,
	"购买数量":        entity.ColQuantity,
	"单价":          entity.ColUnitPrice,
	"price":       entity.ColUnitPrice,
}

var utf8BOM = []byte("\xef\xbb\xbf")

// CSV loads the order export and the order-item file. Items carry no status or time of
// their own; they are joined with the orders on order_id.
type CSV struct {
	ordersPath string
	itemsPath  string
}

func NewCSV(ordersPath, itemsPath string) *CSV {
	return &CSV{ordersPath: ordersPath, itemsPath: itemsPath}
}

func (c *CSV) LoadOrderTable(ctx context.Context) (entity.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return entity.RawTable{}, err
	}
	df, err := readFrame(c.ordersPath)
	if err != nil {
		return entity.RawTable{}, fmt.Errorf("failed to read orders: %w", err)
	}
	table := toRawTable(df)
	slog.Info("table loaded from csv", "file", c.ordersPath, "rows", len(table.Rows))
	return table, nil
}

func (c *CSV) LoadProductTable(ctx context.Context) (entity.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return entity.RawTable{}, err
	}
	items, err := readFrame(c.itemsPath)
	if err != nil {
		return entity.RawTable{}, fmt.Errorf("failed to read order items: %w", err)
	}

	if !hasColumns(items, entity.ColStatus, entity.ColCreatedAt) {
		orders, err := readFrame(c.ordersPath)
		if err != nil {
			return entity.RawTable{}, fmt.Errorf("failed to read orders: %w", err)
		}
		if !hasColumns(orders, entity.ColOrderID, entity.ColStatus, entity.ColCreatedAt) ||
			!hasColumns(items, entity.ColOrderID) {
			return entity.RawTable{}, fmt.Errorf("order items cannot be joined: order_id, status or created_at is missing")
		}
		orders = orders.Select([]string{entity.ColOrderID, entity.ColStatus, entity.ColCreatedAt})
		items = items.InnerJoin(orders, entity.ColOrderID)
		if items.Err != nil {
			return entity.RawTable{}, fmt.Errorf("failed to join order items with orders: %w", items.Err)
		}
	}

	table := toRawTable(items)
	slog.Info("table loaded from csv", "file", c.itemsPath, "rows", len(table.Rows))
	return table, nil
}

// readFrame читает все колонки как строки: типы приводит нормализатор
func readFrame(path string) (dataframe.DataFrame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	df := dataframe.ReadCSV(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse %s: %w", path, df.Err)
	}
	return canonicalNames(df), nil
}

func canonicalNames(df dataframe.DataFrame) dataframe.DataFrame {
	used := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		used[name] = true
	}
	for _, name := range df.Names() {
		canon, ok := canonicalHeader(name)
		if !ok || canon == name {
			continue
		}
		if used[canon] {
			slog.Warn("csv column duplicates a canonical column and is ignored", "column", name, "canonical", canon)
			continue
		}
		df = df.Rename(canon, name)
		used[canon] = true
	}
	return df
}

func canonicalHeader(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := headerAliases[key]; ok {
		return canon, true
	}
	if slices.Contains(entity.OrderColumns, key) || slices.Contains(entity.ProductColumns, key) {
		return key, true
	}
	return "", false
}

func hasColumns(df dataframe.DataFrame, cols ...string) bool {
	names := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		names[n] = true
	}
	for _, c := range cols {
		if !names[c] {
			return false
		}
	}
	return true
}

func toRawTable(df dataframe.DataFrame) entity.RawTable {
	records := df.Records()
	if len(records) == 0 {
		return entity.RawTable{}
	}
	header := records[0]
	table := entity.RawTable{Columns: header, Rows: make([]entity.RawRecord, 0, len(records)-1)}
	for _, rec := range records[1:] {
		row := make(entity.RawRecord, len(header))
		for i, v := range rec {
			row[header[i]] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
