package handlers

import (
	"html"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LegalHandler serves the static privacy policy and terms pages linked from
// the checkout flow.
type LegalHandler struct {
	appName      string
	supportEmail string
}

func NewLegalHandler(appName, supportEmail string) *LegalHandler {
	return &LegalHandler{
		appName:      html.EscapeString(appName),
		supportEmail: html.EscapeString(strings.TrimSpace(supportEmail)),
	}
}

const legalStyle = `<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>`

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Privacy Policy - ` + h.appName + `</title>
` + legalStyle + `
</head><body>
<h1>Privacy Policy</h1>
<p>Last updated: October 2026</p>
<h2>Information We Collect</h2>
<p>We collect your email address, the shower events you plan and the guest details you enter, including guest names and email addresses used for RSVPs.</p>
<h2>Payments</h2>
<p>Card payments are handled by Stripe. We store only your Stripe customer and subscription identifiers and the status of your subscription.</p>
<h2>AI Features</h2>
<p>Prompts you send to the theme assistant, thank-you note writer and game suggester are forwarded to Google Gemini to generate a response.</p>
<h2>Account Deletion</h2>
<p>You can delete your account at any time from the settings page.</p>
<h2>Contact</h2>
<p>For questions about this policy, contact us at ` + h.supportEmail + `</p>
</body></html>`)
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Terms of Service - ` + h.appName + `</title>
` + legalStyle + `
</head><body>
<h1>Terms of Service</h1>
<p>Last updated: October 2026</p>
<h2>Acceptance</h2>
<p>By using ` + h.appName + `, you agree to these terms.</p>
<h2>Subscriptions</h2>
<p>Premium features require an active subscription billed through Stripe. Subscriptions renew automatically until cancelled from the billing portal. Access ends when a payment fails or the subscription is cancelled.</p>
<h2>Guest Data</h2>
<p>You are responsible for having permission to store the contact details of guests you invite.</p>
<h2>Contact</h2>
<p>For questions, contact us at ` + h.supportEmail + `</p>
</body></html>`)
}
