package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/example/invithe/internal/utils"
)

// MailerService sends transactional email through an HTTP mail API.
// Unconfigured instances are silent no-ops so local development works
// without credentials.
type MailerService struct {
	apiURL     string
	apiKey     string
	from       string
	adminEmail string
	client     *http.Client
}

// NewMailerService constructs MailerService.
func NewMailerService(apiURL, apiKey, from, adminEmail string) *MailerService {
	return &MailerService{
		apiURL:     apiURL,
		apiKey:     apiKey,
		from:       from,
		adminEmail: adminEmail,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type mailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (s *MailerService) send(to, subject, text string) error {
	if s.apiURL == "" || s.apiKey == "" {
		log.Println("[Mailer] mail API not configured, skipping send")
		return nil
	}

	body, err := json.Marshal(mailMessage{
		From:    s.from,
		To:      to,
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Mailer] failed to send mail: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("[Mailer] unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	return nil
}

// SendOrderConfirmation emails the customer a summary of their paid order.
func (s *MailerService) SendOrderConfirmation(order *OrderNotification) error {
	var lines strings.Builder
	for _, item := range order.Items {
		lines.WriteString(fmt.Sprintf("  %d x %s — %s\n",
			item.Quantity, item.Name, utils.FormatPrice(item.TotalPrice)))
	}

	deliveryLine := "Retrait en boutique"
	if order.DeliveryMethod == "delivery" {
		deliveryLine = "Livraison à domicile"
	}

	text := fmt.Sprintf(`Bonjour %s,

Merci pour votre commande %s !

%s
Sous-total : %s
Livraison : %s
Remise : -%s
Total : %s

Mode de réception : %s

À très bientôt,
L'InviThé Gourmand`,
		order.CustomerName,
		order.OrderNumber,
		lines.String(),
		utils.FormatPrice(order.Subtotal),
		utils.FormatPrice(order.ShippingCost),
		utils.FormatPrice(order.Discount),
		utils.FormatPrice(order.Total),
		deliveryLine,
	)

	subject := fmt.Sprintf("Confirmation de commande %s", order.OrderNumber)
	return s.send(order.CustomerEmail, subject, text)
}

// SendAdminAlert notifies the shop about a new paid order.
func (s *MailerService) SendAdminAlert(orderNumber string, total float64) error {
	if s.adminEmail == "" {
		log.Println("[Mailer] admin email not configured")
		return nil
	}

	subject := fmt.Sprintf("Nouvelle commande %s", orderNumber)
	text := fmt.Sprintf("Commande %s payée — total %s.", orderNumber, utils.FormatPrice(total))
	return s.send(s.adminEmail, subject, text)
}
