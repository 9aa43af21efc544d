package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/sitebot/internal/shop"
)

func TestProductSelectedTextEscapes(t *testing.T) {
	got := productSelectedText("shop_template", "Rp10.000")
	assert.Contains(t, got, `*shop\_template*`)
	assert.Contains(t, got, "Price: Rp10.000")

	assert.NotContains(t, productSelectedText("landing", ""), "Price")
}

func TestStatusText(t *testing.T) {
	report := shop.StatusReport{
		Stage:   shop.StageAwaitingProof,
		Product: "landing",
		Transactions: []shop.Transaction{
			{Product: "landing", Status: shop.StatusRejected},
			{Product: "shop", Status: shop.StatusApproved, DeployURL: "https://shop.vercel.app"},
		},
	}
	got := statusText(report)
	assert.Contains(t, got, "waiting for your payment proof (*landing*)")
	assert.Contains(t, got, "1. *landing*\nStatus: rejected")
	assert.Contains(t, got, "2. *shop*\nStatus: approved\n🌐 https://shop.vercel.app")
	assert.NotContains(t, got, "Proof", "buyers do not see proof links")
}

func TestHistoryText(t *testing.T) {
	got := historyText([]shop.Transaction{
		{Product: "landing", BuyerName: "Ann", BuyerID: 42, Status: shop.StatusWaiting, ProofURL: "https://f/p.jpg"},
	})
	assert.Contains(t, got, "1. *landing* by Ann (42)\nStatus: waiting\n[Proof](https://f/p.jpg)")
	assert.Contains(t, got, "(1 awaiting review)")

	got = historyText([]shop.Transaction{
		{Product: "shop", BuyerName: "Bo", BuyerID: 7, Status: shop.StatusApproved,
			SiteName: "my-shop", DeployURL: "https://my-shop.vercel.app"},
		{Product: "landing", BuyerName: "Cy", BuyerID: 8, Status: shop.StatusRejected},
	})
	assert.Contains(t, got, "(0 awaiting review)")
	assert.Contains(t, got, "🌐 `my-shop` https://my-shop.vercel.app\n")
}

func TestOwnerDecisionText(t *testing.T) {
	tx := shop.Transaction{BuyerName: "Ann", BuyerID: 42, Product: "landing", Status: shop.StatusRejected}
	assert.Equal(t, "Payment from Ann (42) for landing rejected.", ownerDecisionText(tx))
}

func TestProductKeyboardSkipsOversizedNames(t *testing.T) {
	long := "a-very-long-template-name-that-cannot-fit-into-callback-data-xx"
	kb := productKeyboard([]string{"landing", long})
	assert.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "landing", kb.InlineKeyboard[0][0].Text)
}
