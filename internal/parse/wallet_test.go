package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var walletTokens = []string{"USDC", "BNKR", "DEGEN", "DRB"}

func TestParseWalletLabeledLines(t *testing.T) {
	response := `Here are your holdings on Base:
USDC: $1,204.50
BNKR: $55.20
DEGEN holdings: $12.75
DRB: $0.40`
	res := ParseWallet(response, walletTokens)
	assert.Equal(t, 1204.50, res.Balances["USDC"])
	assert.Equal(t, 55.20, res.Balances["BNKR"])
	assert.Equal(t, 12.75, res.Balances["DEGEN"])
	assert.Equal(t, 0.40, res.Balances["DRB"])
	assert.Empty(t, res.Issues)
}

func TestParseWalletValueFirstVariant(t *testing.T) {
	res := ParseWallet("You hold $87.10 BNKR and nothing else.", []string{"BNKR"})
	assert.Equal(t, 87.10, res.Balances["BNKR"])
}

func TestParseWalletExplicitZeroIsNotAnIssue(t *testing.T) {
	res := ParseWallet("You currently have no DRB in the wallet.", []string{"DRB"})
	assert.Equal(t, 0.0, res.Balances["DRB"])
	assert.True(t, res.Resolved["DRB"])
	assert.Empty(t, res.Issues)
}

func TestParseWalletMissingTokenIsSoftIssue(t *testing.T) {
	res := ParseWallet("USDC: $10.00", []string{"USDC", "BNKR"})
	assert.Equal(t, 0.0, res.Balances["BNKR"])
	assert.False(t, res.Resolved["BNKR"])
	assert.True(t, res.Resolved["USDC"])
	assert.Len(t, res.Issues, 1)
	assert.Contains(t, res.Issues[0], "BNKR")
}
