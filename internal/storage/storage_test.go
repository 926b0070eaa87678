package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Asus/TradeAnalytics/internal/entity"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrderTable(t *testing.T) {
	mock, err := pgxmock.NewPool() // создаём виртуальное подключение к БД
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer mock.Close()

	s := &Storage{pool: mock}
	created := time.Date(2025, 6, 1, 8, 15, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		mockSetup   func()
		expectedLen int
		expectedErr string
	}{
		{
			name: "Success: two orders",
			mockSetup: func() {
				rows := pgxmock.NewRows(entity.OrderColumns).
					AddRow("1001", "交易完成", created, created, nil, "Widget(2)", int32(1), int32(2),
						0.0, 0.0, 350.5, "buyer_a", "gold", int32(3), "13800138000", "", "上海", "上海市", "徐汇区").
					AddRow("1002", "交易关闭", created, nil, nil, "Gadget(1)", int32(1), int32(1),
						8.0, 0.0, 20.0, "buyer_b", nil, nil, nil, nil, nil, nil, nil)
				mock.ExpectQuery(`SELECT .* o\.TotalAmount::float8 AS merchandise_total.*FROM orders o LEFT JOIN region`).
					WillReturnRows(rows)
			},
			expectedLen: 2,
		},
		{
			name: "Failure: Database error",
			mockSetup: func() {
				mock.ExpectQuery(`SELECT .* FROM orders o`).
					WillReturnError(fmt.Errorf("something went wrong"))
			},
			expectedErr: "failed to query orders: something went wrong",
		},
		{
			name: "Failure: row error",
			mockSetup: func() {
				rows := pgxmock.NewRows(entity.OrderColumns).
					AddRow("1001", "交易完成", created, nil, nil, "", int32(1), int32(1),
						0.0, 0.0, 1.0, "a", nil, nil, nil, nil, nil, nil, nil).
					RowError(0, errors.New("broken row"))
				mock.ExpectQuery(`SELECT .* FROM orders o`).WillReturnRows(rows)
			},
			expectedErr: "broken row",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()
			table, err := s.LoadOrderTable(context.Background())

			if tc.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, entity.OrderColumns, table.Columns)
				require.Len(t, table.Rows, tc.expectedLen)
				assert.Equal(t, "1001", table.Rows[0][entity.ColOrderID])
				assert.Equal(t, 350.5, table.Rows[0][entity.ColMerchandiseTotal])
				assert.Nil(t, table.Rows[1][entity.ColProvince])
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

func TestLoadProductTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := &Storage{pool: mock}
	rows := pgxmock.NewRows(entity.ProductColumns).
		AddRow("1001", "p1", "Widget", "Food", "Snack", "Nuts", int32(2), 10.5, "交易完成", time.Now())
	mock.ExpectQuery(`SELECT .* ps\.Price::float8 AS unit_price.*FROM order_item oi`).WillReturnRows(rows)

	table, err := s.LoadProductTable(context.Background())

	require.NoError(t, err)
	assert.Equal(t, entity.ProductColumns, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "p1", table.Rows[0][entity.ColProductID])
	assert.Equal(t, 10.5, table.Rows[0][entity.ColUnitPrice])
	assert.NoError(t, mock.ExpectationsWereMet())
}
