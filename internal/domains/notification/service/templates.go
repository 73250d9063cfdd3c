package service

import (
	"fmt"
)

// =====================================================
// EMAIL TEMPLATES
// =====================================================

// renderTemplate maps a template key plus payload onto a subject and HTML
// body. Unknown keys get a generic rendering rather than an error so an
// outdated worker never wedges the outbox.
func renderTemplate(templateKey string, payload map[string]interface{}) (subject, body string) {
	str := func(key string) string {
		if v, ok := payload[key].(string); ok {
			return v
		}
		return ""
	}
	reference := str("booking_reference")

	switch templateKey {
	case "refund_verification":
		subject = fmt.Sprintf("Confirm your refund request for booking %s", reference)
		body = fmt.Sprintf(
			`<p>We received a refund request for booking <strong>%s</strong>.</p>
<p>Please confirm the request by clicking the link below. The link is valid for 24 hours.</p>
<p><a href="%s">Confirm refund request</a></p>
<p>If you did not request a refund, you can ignore this email.</p>`,
			reference, str("verification_url"))

	case "refund_admin_alert":
		subject = fmt.Sprintf("Refund request pending review: %s", reference)
		body = fmt.Sprintf(
			`<p>A refund request for booking <strong>%s</strong> has been verified and is awaiting review.</p>
<p>Calculated amount: %s</p>
<p>Reason: %s</p>`,
			reference, str("amount"), str("reason"))

	case "refund_approved":
		subject = fmt.Sprintf("Your refund for booking %s has been approved", reference)
		body = fmt.Sprintf(
			`<p>Your refund request for booking <strong>%s</strong> has been approved.</p>
<p>Amount: %s</p>
<p>The refund has been submitted to your payment provider and usually appears within 5-10 business days.</p>`,
			reference, str("amount"))

	case "refund_rejected":
		subject = fmt.Sprintf("Your refund request for booking %s", reference)
		body = fmt.Sprintf(
			`<p>Your refund request for booking <strong>%s</strong> was not approved.</p>
<p>Reason: %s</p>
<p>If you believe this is a mistake, please contact us.</p>`,
			reference, str("rejection_reason"))

	case "refund_processed":
		subject = fmt.Sprintf("Your refund for booking %s has been processed", reference)
		body = fmt.Sprintf(
			`<p>Your refund for booking <strong>%s</strong> has been processed.</p>
<p>Amount refunded: %s</p>`,
			reference, str("amount"))

	case "refund_request_expired":
		subject = fmt.Sprintf("Your refund request for booking %s has expired", reference)
		body = fmt.Sprintf(
			`<p>Your refund request for booking <strong>%s</strong> was not confirmed within 24 hours and has expired.</p>
<p>You can submit a new request at any time.</p>`,
			reference)

	default:
		subject = "Notification"
		body = fmt.Sprintf("<p>You have a new notification (%s).</p>", templateKey)
	}

	return subject, body
}
