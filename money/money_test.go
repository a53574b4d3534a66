package money_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/fiscal-engine/money"
)

func TestMulRate_RoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		bps    int64
		want   int64
	}{
		{"exact", 100000, 500, 5000},
		{"below half rounds down", 1005, 500, 50},      // 50.25
		{"half rounds up", 1010, 500, 51},              // 50.50
		{"above half rounds up", 1015, 500, 51},        // 50.75
		{"zero rate", 123456, 0, 0},
		{"full rate", 123456, 10000, 123456},
		{"negative below half", -1005, 500, -50},       // -50.25
		{"negative half away from zero", -1010, 500, -51}, // -50.50
		{"negative above half", -1015, 500, -51},       // -50.75
		{"negative amount exact", -200000, 2000, -40000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, money.MulRate(tc.amount, tc.bps))
		})
	}
}

func TestSplitGross_AlwaysReconciles(t *testing.T) {
	cases := []struct {
		gross   int64
		bps     int64
		wantNet int64
	}{
		{120000, 2000, 100000}, // 1200.00 TTC at 20% -> 1000.00 HT
		{100000, 2000, 83333},  // 1000.00 TTC at 20% -> 833.33 HT
		{100000, 550, 94787},   // 5.5% rate
		{100000, 0, 100000},
		{-120000, 2000, -100000}, // refunds split symmetrically
		{1, 2000, 1},
	}

	for _, tc := range cases {
		net, tax := money.SplitGross(tc.gross, tc.bps)
		assert.Equal(t, tc.wantNet, net, "gross=%d bps=%d", tc.gross, tc.bps)
		assert.Equal(t, tc.gross, net+tax, "net+tax must equal gross exactly")
	}
}

func TestCentsFromJSON(t *testing.T) {
	t.Run("integer accepted", func(t *testing.T) {
		v, err := money.CentsFromJSON("amount_ttc", json.Number("1000000"))
		require.NoError(t, err)
		assert.Equal(t, int64(1000000), v)
	})

	t.Run("integer-valued float accepted", func(t *testing.T) {
		v, err := money.CentsFromJSON("amount_ttc", json.Number("1000000.0"))
		require.NoError(t, err)
		assert.Equal(t, int64(1000000), v)
	})

	t.Run("fractional cents rejected with field and value", func(t *testing.T) {
		_, err := money.CentsFromJSON("amount_ttc", json.Number("100.5"))
		require.Error(t, err)
		var nie *money.NonIntegerError
		require.ErrorAs(t, err, &nie)
		assert.Equal(t, "amount_ttc", nie.Field)
		assert.Equal(t, "100.5", nie.Value)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := money.CentsFromJSON("vat_rate", json.Number("abc"))
		assert.Error(t, err)
	})
}
