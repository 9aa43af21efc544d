package bot

import (
	"fmt"
	"strings"

	"github.com/m3rciful/sitebot/core/telegram/format"
	"github.com/m3rciful/sitebot/internal/shop"
)

const (
	msgWelcome         = "👋 Welcome! Pick a website template below, pay for it and get it deployed under your own name."
	msgChooseProduct   = "🛍️ Choose the product you want to buy:"
	msgNoProducts      = "❌ No products available."
	msgSendProofNow    = "📸 Send the payment proof now (a photo or screenshot)."
	msgProofReceived   = "📤 Payment proof sent to the owner. Please wait for confirmation..."
	msgProofWaiting    = "⏳ Your payment proof is waiting for the owner's review."
	msgAlreadyPending  = "⏳ You already have a payment waiting for review."
	msgPhotoExpected   = "📸 Please send the payment proof as a photo."
	msgBuyerApproved   = "✅ Payment confirmed!\nSend the project/domain name you want (letters, digits and hyphens, up to 32 characters)."
	msgBuyerRejected   = "❌ Sorry, your payment proof was rejected."
	msgInvalidName     = "❌ Invalid domain name. Use up to 32 lowercase letters, digits or hyphens."
	msgDeployFailed    = "❌ Deployment failed. Send the name again to retry."
	msgDeployRunning   = "🚀 Your site is being deployed, please wait..."
	msgBusy            = "⏳ Finish your current purchase first, or wait for the owner's review."
	msgUnknownProduct  = "❌ That product is no longer available. Use /buy to see the list."
	msgNotApproved     = "⏳ Your payment has not been approved yet."
	msgNoPending       = "ℹ️ There is no approved payment to deploy. Use /buy to start."
	msgNoTransactions  = "❌ No transactions found."
	msgNoHistory       = "❌ No history yet."
	msgOwnerOnly       = "❌ Owner only."
	msgCancelled       = "👌 Purchase cancelled."
	msgNothingToCancel = "ℹ️ Nothing to cancel."
	msgCannotCancel    = "⏳ A submitted payment cannot be cancelled; wait for the owner's decision."
	msgGeneric         = "⚠️ Something went wrong. Please try again later."
	msgUnknownText     = "🤔 I did not get that. Use /buy to browse products or /help for commands."
	msgButtonExpired   = "This button is no longer active"
	msgRateLimited     = "Slow down a little, please."
	msgPaidButton      = "✅ I have paid"
	msgPayButton       = "💳 Pay"
	msgApproveButton   = "✅ Approve"
	msgRejectButton    = "❌ Reject"
)

func productSelectedText(product, price string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 Product: *%s*\n", format.MD(product))
	if price != "" {
		fmt.Fprintf(&b, "💳 Price: %s\n", format.MD(price))
	}
	b.WriteString("\nPay using the link below, then send the payment proof as a photo or screenshot.")
	return b.String()
}

func paymentPromptText(paymentURL string) string {
	if paymentURL == "" {
		return "📲 Complete the payment, then press the button below."
	}
	return "📲 Open the link below to pay:\n\n👉 " + paymentURL
}

func ownerProofCaption(tx shop.Transaction) string {
	return fmt.Sprintf("💰 Purchase request\n👤 From: %s (%d)\n📦 Product: %s",
		tx.BuyerName, tx.BuyerID, tx.Product)
}

func ownerDecisionText(tx shop.Transaction) string {
	verb := "approved"
	if tx.Status == shop.StatusRejected {
		verb = "rejected"
	}
	return fmt.Sprintf("Payment from %s (%d) for %s %s.", tx.BuyerName, tx.BuyerID, tx.Product, verb)
}

func deployStartedText(product string) string {
	return fmt.Sprintf("🚀 Building your website from *%s* and deploying it...", format.MD(product))
}

func deployDoneText(url string) string {
	return "✅ Website deployed!\n🌐 " + url
}

func ownerDeployedText(tx shop.Transaction) string {
	return fmt.Sprintf("🆕 New website deployed by %s\n🌐 %s", tx.BuyerName, tx.DeployURL)
}

func stageText(st shop.Stage) string {
	switch st {
	case shop.StageAwaitingProof:
		return "waiting for your payment proof"
	case shop.StageProofSubmitted:
		return "payment proof under review"
	case shop.StageNameEntry:
		return "waiting for your site name"
	case shop.StageDeploying:
		return "deploying"
	}
	return "idle"
}

func statusText(report shop.StatusReport) string {
	var b strings.Builder
	if report.Stage != shop.StageIdle {
		fmt.Fprintf(&b, "📍 Current step: %s", stageText(report.Stage))
		if report.Product != "" {
			fmt.Fprintf(&b, " (*%s*)", format.MD(report.Product))
		}
		b.WriteString("\n")
	}
	if len(report.Transactions) > 0 {
		b.WriteString("🛒 Your purchases:\n")
	}
	for i, tx := range report.Transactions {
		fmt.Fprintf(&b, "\n%d. *%s*\nStatus: %s\n", i+1, format.MD(tx.Product), tx.Status)
		writeSite(&b, tx)
	}
	return b.String()
}

// writeSite appends the deployed site of tx, if any.
func writeSite(b *strings.Builder, tx shop.Transaction) {
	if !tx.Deployed() {
		return
	}
	b.WriteString("🌐 ")
	if tx.SiteName != "" {
		b.WriteString(format.Code(tx.SiteName) + " ")
	}
	b.WriteString(format.MD(tx.DeployURL) + "\n")
}

func historyText(txs []shop.Transaction) string {
	var b strings.Builder
	pending := 0
	for _, tx := range txs {
		if !tx.Status.Terminal() {
			pending++
		}
	}
	fmt.Fprintf(&b, "📜 All transactions (%d awaiting review):\n", pending)
	for i, tx := range txs {
		fmt.Fprintf(&b, "\n%d. *%s* by %s (%d)\nStatus: %s\n",
			i+1, format.MD(tx.Product), format.MD(tx.BuyerName), tx.BuyerID, tx.Status)
		if tx.ProofURL != "" {
			fmt.Fprintf(&b, "[Proof](%s)\n", tx.ProofURL)
		}
		writeSite(&b, tx)
	}
	return b.String()
}

func helpText(lines []string) string {
	return "Available commands:\n" + strings.Join(lines, "\n")
}
