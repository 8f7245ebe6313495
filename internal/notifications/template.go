package notifications

import (
	"fmt"
	"strings"

	"github.com/littlethreads/backend/pkg/db/models"
)

// ConfirmationHTML renders the order confirmation body: a line table with the
// denormalized checkout prices, the total, and a note when the new-user
// discount was applied.
func ConfirmationHTML(order *models.Order, recipient Recipient) string {
	var rows strings.Builder
	for _, line := range order.Lines {
		variant := line.Size
		if line.Color != nil {
			variant = fmt.Sprintf("%s / %s", *line.Color, line.Size)
		}
		rows.WriteString(fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
			</tr>`,
			htmlEscape(line.Title), htmlEscape(variant), line.Quantity,
			line.UnitPrice.StringFixed(2), line.LineTotal.StringFixed(2)))
	}

	greeting := "Hello,"
	if recipient.Name != "" {
		greeting = fmt.Sprintf("Hello %s,", htmlEscape(recipient.Name))
	}

	discountNote := ""
	if order.NewUserDiscount {
		discountNote = `<p style="color: #2e7d32;">Your 10% first-order discount has been applied.</p>`
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Order confirmation</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Thanks for your order!</h2>
		<p>%s</p>
		<p>Your order has been received and is being prepared.</p>
		%s
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Item</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Variant</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Qty</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Unit price</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
			<tfoot>
				<tr>
					<td colspan="4" style="padding: 8px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 8px; font-weight: bold;">%s</td>
				</tr>
			</tfoot>
		</table>
		<p style="margin-top: 30px; color: #555;">
			Warm regards,<br>
			<strong>The LittleThreads team</strong>
		</p>
	</div>
</body>
</html>`, greeting, discountNote, rows.String(), order.TotalPrice.StringFixed(2))
}

func htmlEscape(value string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(value)
}
