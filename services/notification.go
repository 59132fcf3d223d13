package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"
	"tripsplit-backend/config"
	"tripsplit-backend/database"
	"tripsplit-backend/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"google.golang.org/api/option"
)

type NotificationService struct {
	fcm      *messaging.Client
	sendgrid *sendgrid.Client
}

var notifService *NotificationService

func GetNotificationService() *NotificationService {
	if notifService == nil {
		notifService = &NotificationService{}
		notifService.init()
	}
	return notifService
}

func (ns *NotificationService) init() {
	if config.AppConfig.FirebaseCredPath != "" {
		app, err := firebase.NewApp(context.Background(), nil,
			option.WithCredentialsFile(config.AppConfig.FirebaseCredPath))
		if err != nil {
			log.Printf("⚠️  Firebase init failed, push disabled: %v", err)
		} else if client, err := app.Messaging(context.Background()); err != nil {
			log.Printf("⚠️  Firebase messaging init failed, push disabled: %v", err)
		} else {
			ns.fcm = client
			log.Println("✅ Firebase messaging initialized")
		}
	} else {
		log.Println("⚠️  FIREBASE_CREDENTIALS not set, push notifications disabled")
	}

	if config.AppConfig.SendGridAPIKey != "" {
		ns.sendgrid = sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)
		log.Println("✅ SendGrid client initialized")
	} else {
		log.Println("⚠️  SENDGRID_API_KEY not set, email notifications disabled")
	}
}

// ============================================================
// PUSH NOTIFICATIONS via Firebase Admin SDK
// ============================================================

func (ns *NotificationService) sendPush(fcmToken string, title string, body string, data map[string]string) {
	if ns.fcm == nil || fcmToken == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{Sound: "default"},
		},
	}

	if _, err := ns.fcm.Send(ctx, msg); err != nil {
		log.Printf("❌ FCM send error: %v", err)
		return
	}
	log.Printf("✅ Push notification sent: %s", title)
}

// ============================================================
// EMAIL NOTIFICATIONS via SendGrid
// ============================================================

func (ns *NotificationService) sendEmail(toEmail string, toName string, subject string, htmlBody string) {
	if ns.sendgrid == nil {
		log.Printf("⚠️  SendGrid not configured, skipping email to %s", toEmail)
		return
	}

	from := mail.NewEmail(config.AppConfig.AppName, config.AppConfig.SendGridFrom)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	resp, err := ns.sendgrid.Send(message)
	if err != nil {
		log.Printf("❌ Email send error: %v", err)
		return
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Printf("✅ Email sent to %s", toEmail)
	} else {
		log.Printf("⚠️  SendGrid returned status: %d", resp.StatusCode)
	}
}

// ============================================================
// NOTIFICATION EVENTS
// ============================================================

// NotifyExpenseAdded sends push + email to every participant with a share,
// except the payer.
func (ns *NotificationService) NotifyExpenseAdded(expense models.Expense, shares map[uuid.UUID]float64, payer models.User, trip models.Trip) {
	for userID, owed := range shares {
		if userID == expense.PaidBy || owed <= 0 {
			continue
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			continue
		}

		title := fmt.Sprintf("%s added an expense", payer.Name)
		body := fmt.Sprintf("You owe %s %.2f for \"%s\" in %s", expense.Currency, owed, expense.Description, trip.Name)

		ns.sendPush(user.FCMToken, title, body, map[string]string{
			"type":       "expense_added",
			"expense_id": expense.ID.String(),
			"trip_id":    expense.TripID.String(),
		})

		htmlBody := buildExpenseEmailHTML(payer.Name, user.Name, expense.Description, expense.Amount, owed, expense.Currency, trip.Name)
		ns.sendEmail(user.Email, user.Name, fmt.Sprintf("%s added \"%s\" in %s", payer.Name, expense.Description, trip.Name), htmlBody)
	}
}

// NotifySettlementCompleted sends push + email to the payee
func (ns *NotificationService) NotifySettlementCompleted(settlement models.Settlement, payer models.User, payee models.User, trip models.Trip) {
	title := fmt.Sprintf("%s paid you", payer.Name)
	body := fmt.Sprintf("%s paid you %s %.2f in %s", payer.Name, settlement.Currency, settlement.Amount, trip.Name)

	ns.sendPush(payee.FCMToken, title, body, map[string]string{
		"type":    "settlement_completed",
		"trip_id": settlement.TripID.String(),
	})

	htmlBody := buildSettlementEmailHTML(payer.Name, payee.Name, settlement.Amount, settlement.Currency, trip.Name)
	ns.sendEmail(payee.Email, payee.Name, fmt.Sprintf("%s settled up with you in %s", payer.Name, trip.Name), htmlBody)
}

// NotifyMemberAdded sends push + email to the newly added member
func (ns *NotificationService) NotifyMemberAdded(trip models.Trip, adder models.User, newMember models.User) {
	title := fmt.Sprintf("You were added to \"%s\"", trip.Name)
	body := fmt.Sprintf("%s added you to the trip \"%s\"", adder.Name, trip.Name)

	ns.sendPush(newMember.FCMToken, title, body, map[string]string{
		"type":    "member_added",
		"trip_id": trip.ID.String(),
	})

	htmlBody := buildMemberAddedEmailHTML(adder.Name, newMember.Name, trip.Name)
	ns.sendEmail(newMember.Email, newMember.Name, title, htmlBody)
}

// NotifyInvitation sends email to non-registered users
func (ns *NotificationService) NotifyInvitation(email string, inviterName string, tripName string) {
	subject := fmt.Sprintf("%s invited you to join \"%s\" on %s", inviterName, tripName, config.AppConfig.AppName)
	htmlBody := buildInvitationEmailHTML(inviterName, tripName)
	ns.sendEmail(email, "", subject, htmlBody)
}

// ============================================================
// EMAIL TEMPLATES
// ============================================================

func buildExpenseEmailHTML(payerName, userName, description string, totalAmount, owedAmount float64, currency, tripName string) string {
	tmpl := `
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">💰 New Expense Added</h2>
		<p>Hi <strong>{{.UserName}}</strong>,</p>
		<p><strong>{{.PayerName}}</strong> added a new expense in <strong>{{.TripName}}</strong>:</p>
		<div style="background: #f8f9fa; border-radius: 8px; padding: 16px; margin: 16px 0;">
			<p style="margin: 4px 0; font-size: 18px;"><strong>{{.Description}}</strong></p>
			<p style="margin: 4px 0; color: #666;">Total: {{.Currency}} {{printf "%.2f" .TotalAmount}}</p>
			<p style="margin: 4px 0; color: #e53e3e; font-size: 18px;"><strong>Your share: {{.Currency}} {{printf "%.2f" .OwedAmount}}</strong></p>
		</div>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— {{.AppName}}</p>
	</div>
</body>
</html>`

	t, _ := template.New("expense").Parse(tmpl)
	var buf bytes.Buffer
	t.Execute(&buf, map[string]interface{}{
		"PayerName":   payerName,
		"UserName":    userName,
		"Description": description,
		"TotalAmount": totalAmount,
		"OwedAmount":  owedAmount,
		"Currency":    currency,
		"TripName":    tripName,
		"AppName":     config.AppConfig.AppName,
	})
	return buf.String()
}

func buildSettlementEmailHTML(payerName, payeeName string, amount float64, currency, tripName string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">✅ Payment Recorded</h2>
		<p>Hi <strong>%s</strong>,</p>
		<p><strong>%s</strong> recorded a payment of <strong>%s %.2f</strong> to you in <strong>%s</strong>.</p>
		<p>Check the app to see your updated balances.</p>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— %s</p>
	</div>
</body>
</html>`, payeeName, payerName, currency, amount, tripName, config.AppConfig.AppName)
}

func buildMemberAddedEmailHTML(adderName, memberName, tripName string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">👋 You've been added to a trip!</h2>
		<p>Hi <strong>%s</strong>,</p>
		<p><strong>%s</strong> added you to the trip <strong>"%s"</strong>.</p>
		<p>Open the app to start splitting expenses with your travel companions!</p>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— %s</p>
	</div>
</body>
</html>`, memberName, adderName, tripName, config.AppConfig.AppName)
}

func buildInvitationEmailHTML(inviterName, tripName string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #1DB954; margin-top: 0;">🎉 You're invited!</h2>
		<p><strong>%s</strong> invited you to join <strong>"%s"</strong> on %s.</p>
		<p>%s makes it easy to track and split trip expenses with friends.</p>
		<div style="margin: 24px 0;">
			<a href="%s" style="background: #1DB954; color: white; padding: 12px 32px; border-radius: 8px; text-decoration: none; font-weight: bold;">Join Now</a>
		</div>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— %s</p>
	</div>
</body>
</html>`, inviterName, tripName, config.AppConfig.AppName, config.AppConfig.AppName, config.AppConfig.AppURL, config.AppConfig.AppName)
}
