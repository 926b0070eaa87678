package storage

import "fmt"

// Запросы возвращают колонки сразу под каноническими именами entity.Col*.
// Схема повторяет торговую БД: orders, region, customer, order_item, product_spec, product, category.

const orderQueryTmpl = `
		SELECT
			o.OrderID AS order_id,
			o.Status AS status,
			o.Created_time AS created_at,
			o.Payment_time AS paid_at,
			o.Completed_time AS completed_at,
			o.AllProduct AS all_product_text,
			o.Pdnumber AS item_type_count,
			o.Totalnumber AS item_unit_count,
			%s AS shipping_fee,
			%s AS discount_total,
			%s AS merchandise_total,
			o.Customer_ID AS customer_id,
			c.MemberLevel AS member_level,
			c.order_count AS order_count_raw,
			c.Phone AS phone,
			c.Remark AS remark,
			r.Province AS province,
			r.City AS city,
			r.District AS district
		FROM orders o
		LEFT JOIN region r ON o.RegionID = r.RegionID
		LEFT JOIN customer c ON o.Customer_ID = c.Customer_ID
		ORDER BY o.Created_time, o.OrderID`

const productQueryTmpl = `
		SELECT
			oi.OrderID AS order_id,
			ps.ProductID AS product_id,
			p.ProductName AS product_name,
			ca.Category1 AS category1,
			ca.Category2 AS category2,
			ca.Category3 AS category3,
			oi.Quantity AS quantity,
			%s AS unit_price,
			o.Status AS status,
			o.Created_time AS created_at
		FROM order_item oi
		JOIN orders o ON oi.OrderID = o.OrderID
		JOIN product_spec ps ON oi.ProdSpecID = ps.ProdSpecID
		JOIN product p ON ps.ProductID = p.ProductID
		LEFT JOIN category ca ON p.CategoryID = ca.CategoryID
		ORDER BY o.Created_time, oi.OrderID`

// dialect adapts the numeric columns: Postgres numerics are cast to float8 so the
// driver hands back plain float64 values.
type dialect func(column string) string

func plain(column string) string { return column }

func postgres(column string) string { return column + "::float8" }

func orderQuery(d dialect) string {
	return fmt.Sprintf(orderQueryTmpl, d("o.Freight"), d("o.Discount"), d("o.TotalAmount"))
}

func productQuery(d dialect) string {
	return fmt.Sprintf(productQueryTmpl, d("ps.Price"))
}
