package compare_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bidcompare/pkg/bids"
	"github.com/agentstation/bidcompare/pkg/compare"
	"github.com/agentstation/bidcompare/pkg/errors"
	"github.com/agentstation/bidcompare/pkg/logging"
)

func num(s string) json.Number { return json.Number(s) }

// truthBid builds a truth record with every field the pipelines read.
func truthBid(fdKey, uuid string, amount, toAmount, auction any) bids.Record {
	return bids.Record{
		"item_fd_key":    "I-" + fdKey,
		"user_fd_key":    fdKey,
		"user_uuid_text": uuid,
		"bid_amount":     amount,
		"bid_to_amount":  toAmount,
		"auction_fd_key": auction,
	}
}

func source2Bid(lot any, fdKey string, amount, display any) bids.Record {
	return bids.Record{
		"LotNumber":   lot,
		"user_fd_key": fdKey,
		"bid_amount":  amount,
		"BidAmount":   display,
	}
}

func source3Bid(lot any, lotKey, bidder, bidType string, amount any, auction string) bids.Record {
	return bids.Record{
		"LotNumber":      lot,
		"Lot_FD_Key":     lotKey,
		"Bidder_FD_Key":  bidder,
		"BidType":        bidType,
		"BidAmount":      amount,
		"Auction_FD_Key": auction,
	}
}

func run(t *testing.T, p *compare.Pipeline, truth, others, table []bids.Record) *compare.Result {
	t.Helper()
	res, err := p.Run(context.Background(), truth, others, table)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestSource2Pipeline(t *testing.T) {
	table := []bids.Record{{"uuid_text": "U1", "fd_key": "F1"}}

	t.Run("equal records produce nothing", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "", num("100"), nil, "")}
		others := []bids.Record{source2Bid("L1", "F1", num("100"), num("100"))}

		res := run(t, compare.NewSource2Pipeline(), truth, others, table)
		assert.Empty(t, res.Discrepancies)
		assert.Empty(t, res.Errors)
		assert.Equal(t, compare.Stats{Truth: 1, Correlated: 1, Matched: 1}, res.Stats)
	})

	t.Run("bid amount differs", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "", num("100"), nil, "")}
		others := []bids.Record{source2Bid("L1", "F1", num("150"), num("100"))}

		res := run(t, compare.NewSource2Pipeline(), truth, others, table)
		assert.Equal(t, []compare.Discrepancy{
			{Lot: "L1", Field: "Bid Amount", Destination: "2", Diff: "100 ⇒ 150"},
		}, res.Discrepancies)
	})

	t.Run("loose numeric forms are equal", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "", "100", nil, "")}
		others := []bids.Record{source2Bid("L1", "F1", num("100.00"), num("100"))}

		res := run(t, compare.NewSource2Pipeline(), truth, others, table)
		assert.Empty(t, res.Discrepancies)
	})

	t.Run("phone bid compares bid to amount with displayed amount", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "", "P", num("200"), "")}
		others := []bids.Record{source2Bid(num("7"), "F1", "P", num("250"))}

		res := run(t, compare.NewSource2Pipeline(), truth, others, table)
		assert.Equal(t, []compare.Discrepancy{
			{Lot: "7", Field: "Bid to Amount", Destination: "2", Diff: "200 ⇒ 250"},
		}, res.Discrepancies)
	})

	t.Run("phone bid in truth only", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "", "P", num("200"), "")}
		others := []bids.Record{source2Bid("L1", "F1", num("200"), num("200"))}

		res := run(t, compare.NewSource2Pipeline(), truth, others, table)
		assert.Equal(t, []compare.Discrepancy{
			{Lot: "L1", Field: "Bid Amount", Destination: "2", Diff: "P ⇒ 200"},
		}, res.Discrepancies)
	})

	t.Run("uncorrelated identity is skipped", func(t *testing.T) {
		truth := []bids.Record{truthBid("U9", "", num("100"), nil, "")}
		others := []bids.Record{source2Bid("L1", "F1", num("150"), num("150"))}

		res := run(t, compare.NewSource2Pipeline(), truth, others, table)
		assert.Empty(t, res.Discrepancies)
		assert.Empty(t, res.Errors)
		assert.Equal(t, 0, res.Stats.Correlated)
	})

	t.Run("missing counterpart is skipped", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "", num("100"), nil, "")}
		others := []bids.Record{source2Bid("L1", "F2", num("150"), num("150"))}

		res := run(t, compare.NewSource2Pipeline(), truth, others, table)
		assert.Empty(t, res.Discrepancies)
		assert.Equal(t, 1, res.Stats.Correlated)
		assert.Equal(t, 0, res.Stats.Matched)
	})

	t.Run("only the first counterpart is compared", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "", num("100"), nil, "")}
		others := []bids.Record{
			source2Bid("L1", "F1", num("100"), num("100")),
			source2Bid("L2", "F1", num("999"), num("999")),
		}

		res := run(t, compare.NewSource2Pipeline(), truth, others, table)
		assert.Empty(t, res.Discrepancies)
	})
}

func TestSource3Pipeline(t *testing.T) {
	table := []bids.Record{{"uuid_text": "B1", "fd_key": "F1"}}

	t.Run("phone sentinel mismatch", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "B1", "P", num("200"), "A1")}
		others := []bids.Record{source3Bid("L1", "F1", "B1", "1", num("200"), "A1")}

		res := run(t, compare.NewSource3Pipeline(), truth, others, table)
		assert.Equal(t, []compare.Discrepancy{
			{Lot: "L1", Field: "Bid Type", Destination: "3", Diff: "P ⇒ 1"},
		}, res.Discrepancies)
	})

	t.Run("both phone bids agree despite different sentinels", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "B1", "P", num("200"), "A1")}
		others := []bids.Record{source3Bid("L1", "F1", "B1", "9", num("200"), "A1")}

		res := run(t, compare.NewSource3Pipeline(), truth, others, table)
		assert.Empty(t, res.Discrepancies)
	})

	t.Run("phone in destination only", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "B1", num("300"), nil, "A1")}
		others := []bids.Record{source3Bid("L1", "F1", "B1", "9", num("300"), "A1")}

		res := run(t, compare.NewSource3Pipeline(), truth, others, table)
		assert.Equal(t, []compare.Discrepancy{
			{Lot: "L1", Field: "Bid Type", Destination: "3", Diff: "300 ⇒ 9"},
		}, res.Discrepancies)
	})

	t.Run("amount and auction mismatch", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "B1", num("300"), nil, "A1")}
		others := []bids.Record{source3Bid(num("4"), "F1", "B1", "1", num("350"), "A2")}

		res := run(t, compare.NewSource3Pipeline(), truth, others, table)
		assert.Equal(t, []compare.Discrepancy{
			{Lot: "4", Field: "Bid Amount", Destination: "3", Diff: "300 ⇒ 350"},
			{Lot: "4", Field: "Auction FD Key", Destination: "3", Diff: "A1 ⇒ A2"},
		}, res.Discrepancies)
	})

	t.Run("phone bid amount uses bid to amount", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "B1", "P", num("200"), "A1")}
		others := []bids.Record{source3Bid("L1", "F1", "B1", "9", num("210"), "A1")}

		res := run(t, compare.NewSource3Pipeline(), truth, others, table)
		assert.Equal(t, []compare.Discrepancy{
			{Lot: "L1", Field: "Bid Amount", Destination: "3", Diff: "200 ⇒ 210"},
		}, res.Discrepancies)
	})

	t.Run("composite match needs both fields", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "B1", num("300"), nil, "A1")}
		others := []bids.Record{
			source3Bid("L1", "F1", "B2", "1", num("999"), "A9"),
			source3Bid("L2", "F2", "B1", "1", num("999"), "A9"),
		}

		res := run(t, compare.NewSource3Pipeline(), truth, others, table)
		assert.Empty(t, res.Discrepancies)
		assert.Equal(t, 0, res.Stats.Matched)
	})
}

func TestStructuralErrors(t *testing.T) {
	table := []bids.Record{{"uuid_text": "B1", "fd_key": "F1"}}

	t.Run("missing field abandons one check", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "B1", num("300"), nil, "A1")}
		other := source3Bid("L1", "F1", "B1", "1", num("350"), "A2")
		delete(other, "BidType")

		res := run(t, compare.NewSource3Pipeline(), truth, []bids.Record{other}, table)
		assert.Equal(t, []compare.Discrepancy{
			{Lot: "L1", Field: "Bid Amount", Destination: "3", Diff: "300 ⇒ 350"},
			{Lot: "L1", Field: "Auction FD Key", Destination: "3", Diff: "A1 ⇒ A2"},
		}, res.Discrepancies)

		require.Len(t, res.Errors, 1)
		var fieldErr *errors.FieldError
		require.ErrorAs(t, res.Errors[0], &fieldErr)
		assert.Equal(t, "source3", fieldErr.System)
		assert.Equal(t, "BidType", fieldErr.Key)
		assert.Equal(t, "L1", fieldErr.Lot)
		assert.Equal(t, 1, res.Stats.Errors)
	})

	t.Run("non-scalar value abandons one check", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "B1", num("300"), nil, "A1")}
		other := source3Bid("L1", "F1", "B1", "1", num("300"), "A1")
		other["Auction_FD_Key"] = map[string]any{"id": "A1"}

		res := run(t, compare.NewSource3Pipeline(), truth, []bids.Record{other}, table)
		assert.Empty(t, res.Discrepancies)
		require.Len(t, res.Errors, 1)
		assert.True(t, errors.IsStructural(res.Errors[0]))
	})

	t.Run("missing lot abandons the pair", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "B1", num("300"), nil, "A1")}
		other := source3Bid("L1", "F1", "B1", "1", num("350"), "A2")
		delete(other, "LotNumber")

		res := run(t, compare.NewSource3Pipeline(), truth, []bids.Record{other}, table)
		assert.Empty(t, res.Discrepancies)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0].Error(), "LotNumber")
	})

	t.Run("truth without identity is skipped with an error", func(t *testing.T) {
		bad := truthBid("U1", "B1", num("300"), nil, "A1")
		delete(bad, "user_uuid_text")
		good := truthBid("U1", "B1", num("300"), nil, "A1")
		others := []bids.Record{source3Bid("L1", "F1", "B1", "1", num("350"), "A1")}

		res := run(t, compare.NewSource3Pipeline(), []bids.Record{bad, good}, others, table)
		assert.Len(t, res.Discrepancies, 1, "the run continues past the broken record")
		require.Len(t, res.Errors, 1)
		assert.True(t, errors.IsStructural(res.Errors[0]))
	})

	t.Run("correlation row without fd_key", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "B1", num("300"), nil, "A1")}
		others := []bids.Record{source3Bid("L1", "F1", "B1", "1", num("350"), "A1")}

		res := run(t, compare.NewSource3Pipeline(), truth, others, []bids.Record{{"uuid_text": "B1"}})
		assert.Empty(t, res.Discrepancies)
		require.Len(t, res.Errors, 1)
	})

	t.Run("null identity is a silent miss", func(t *testing.T) {
		truth := []bids.Record{truthBid("U1", "B1", num("300"), nil, "A1")}
		truth[0]["user_uuid_text"] = nil

		res := run(t, compare.NewSource3Pipeline(), truth, nil, table)
		assert.Empty(t, res.Errors)
		assert.Equal(t, 0, res.Stats.Correlated)
	})
}

func TestEmptyInputs(t *testing.T) {
	truth := []bids.Record{truthBid("U1", "B1", num("100"), nil, "A1")}
	table := []bids.Record{{"uuid_text": "U1", "fd_key": "F1"}}
	others := []bids.Record{source2Bid("L1", "F1", num("150"), num("150"))}

	for _, p := range []*compare.Pipeline{compare.NewSource2Pipeline(), compare.NewSource3Pipeline()} {
		for name, in := range map[string][3][]bids.Record{
			"empty truth":       {nil, others, table},
			"empty destination": {truth, nil, table},
			"empty table":       {truth, others, nil},
		} {
			t.Run(string(p.Destination)+" "+name, func(t *testing.T) {
				res := run(t, p, in[0], in[1], in[2])
				assert.Empty(t, res.Discrepancies)
				assert.Empty(t, res.Errors)
			})
		}
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	truth := []bids.Record{truthBid("U1", "", num("100"), nil, "")}
	res, err := compare.NewSource2Pipeline().Run(ctx, truth, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Stats.Truth)
}

func TestRunLogsAbandonedChecks(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	truth := []bids.Record{truthBid("U1", "B1", num("300"), nil, "A1")}
	other := source3Bid("L1", "F1", "B1", "1", num("300"), "A1")
	delete(other, "Auction_FD_Key")

	_, err := compare.NewSource3Pipeline().Run(ctx, truth, []bids.Record{other}, []bids.Record{{"uuid_text": "B1", "fd_key": "F1"}})
	require.NoError(t, err)

	tl.AssertContains(t, "Check abandoned")
	tl.AssertContains(t, `"destination":"3"`)
	tl.AssertContains(t, "Pipeline finished")
}

func TestCompareNoFalsePositives(t *testing.T) {
	p := compare.NewSource3Pipeline()
	pairs := []struct {
		truth bids.Record
		other bids.Record
	}{
		{truthBid("U1", "B1", num("10"), nil, "A"), source3Bid("1", "F", "B1", "1", "10", "A")},
		{truthBid("U1", "B1", "P", num("20"), "A"), source3Bid("2", "F", "B1", "9", num("20.0"), "A")},
		{truthBid("U1", "B1", num("5"), nil, num("7")), source3Bid("3", "F", "B1", "2", 5, "7")},
	}

	for _, pair := range pairs {
		diffs, errs := p.Compare(pair.truth, pair.other)
		assert.Empty(t, diffs)
		assert.Empty(t, errs)
	}
}

func TestPhoneEncodings(t *testing.T) {
	phone, err := compare.TruthPhone.IsPhone(bids.Record{"bid_amount": "P"})
	require.NoError(t, err)
	assert.True(t, phone)

	phone, err = compare.Source2Phone.IsPhone(bids.Record{"bid_amount": num("12")})
	require.NoError(t, err)
	assert.False(t, phone)

	phone, err = compare.Source3Phone.IsPhone(bids.Record{"BidType": num("9")})
	require.NoError(t, err)
	assert.True(t, phone, "numeric 9 and string 9 are the same sentinel")

	_, err = compare.Source3Phone.IsPhone(bids.Record{})
	assert.True(t, errors.IsStructural(err))
}

func TestEffectiveAmount(t *testing.T) {
	v, err := compare.EffectiveAmount(bids.Record{"bid_amount": "P", "bid_to_amount": num("200")})
	require.NoError(t, err)
	assert.Equal(t, num("200"), v)

	v, err = compare.EffectiveAmount(bids.Record{"bid_amount": num("150"), "bid_to_amount": nil})
	require.NoError(t, err)
	assert.Equal(t, num("150"), v)

	_, err = compare.EffectiveAmount(bids.Record{"bid_amount": "P"})
	assert.Error(t, err)
}

func TestDiscrepancyRow(t *testing.T) {
	d := compare.NewDiscrepancy(num("12"), compare.LabelBidAmount, compare.Destination2, nil, num("5"))
	assert.Equal(t, []string{"12", "Bid Amount", "2", " ⇒ 5"}, d.Row())
}
