package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountSinkZeroValueIsNoOp(t *testing.T) {
	var sink AccountSink

	err := sink.RecordAttempt(context.Background(), "ch1", true, "", 100)
	assert.NoError(t, err, "a sink with no Ledger configured must not error")
}

func TestNewAccountSinkCarriesAccountAndVendor(t *testing.T) {
	sink := NewAccountSink(nil, "acc-1", "kaku")

	assert.Equal(t, "acc-1", sink.accountID)
	assert.Equal(t, "kaku", sink.vendor)
}
