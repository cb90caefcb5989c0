package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/atlas-shop/internal/config"
	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/models"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 是否启用邮件发送
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// SendOrderConfirmation 发送下单确认邮件
func (s *EmailService) SendOrderConfirmation(toEmail string, user *models.User, order *models.Order) error {
	subject, body := buildOrderConfirmationContent(user, order)
	return s.sendTextEmail(toEmail, subject, body)
}

// OrderStatusEmailInput 订单状态邮件输入
type OrderStatusEmailInput struct {
	OrderNo        string
	Status         string
	Amount         models.Money
	TrackingNumber string
	CustomerName   string
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(toEmail string, input OrderStatusEmailInput) error {
	subject, body := buildOrderStatusContent(input)
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s == nil || s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	msg := buildEmailMessage(buildFromAddress(s.cfg.From, s.cfg.FromName), toEmail, subject, body)
	client, err := dialSMTP(s.cfg)
	if err != nil {
		return err
	}
	defer client.Close()
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return normalizeEmailSendError(deliver(client, auth, s.cfg.From, toEmail, []byte(msg)))
}

func buildOrderConfirmationContent(user *models.User, order *models.Order) (string, string) {
	name := "Valued Client"
	if user != nil {
		name = user.DisplayName()
	}
	if order == nil {
		return "Order Confirmation", fmt.Sprintf("Hello %s,\n\nThank you for your order.", name)
	}
	subject := fmt.Sprintf("Order Confirmation %s", order.OrderNo)

	var buf strings.Builder
	fmt.Fprintf(&buf, "Hello %s,\n\n", name)
	fmt.Fprintf(&buf, "Thank you for your order %s placed on %s.\n\n", order.OrderNo, order.CreatedAt.Format(time.DateOnly))
	for _, item := range order.Items {
		label := item.ProductName
		if variant := strings.TrimSpace(strings.Join(nonEmpty(item.Size, item.Color), " / ")); variant != "" {
			label = fmt.Sprintf("%s (%s)", label, variant)
		}
		fmt.Fprintf(&buf, "- %s x%d  %s\n", label, item.Quantity, item.Subtotal().String())
	}
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "Subtotal: %s\n", order.SubtotalAmount.String())
	if order.DiscountAmount.IsPositive() {
		fmt.Fprintf(&buf, "Discount: -%s\n", order.DiscountAmount.String())
	}
	fmt.Fprintf(&buf, "Shipping: %s\n", order.ShippingFee.String())
	fmt.Fprintf(&buf, "Total: %s\n\n", order.TotalAmount.String())
	fmt.Fprintf(&buf, "Shipping to: %s, %s (%s)\n", order.ShippingAddress, order.ShippingCity, order.ShippingPhone)
	fmt.Fprintf(&buf, "Payment method: %s\n", order.PaymentMethod)
	return subject, buf.String()
}

func buildOrderStatusContent(input OrderStatusEmailInput) (string, string) {
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		name = "Valued Client"
	}
	status := strings.ToUpper(strings.TrimSpace(input.Status))
	subject := fmt.Sprintf("Order %s is now %s", input.OrderNo, status)
	var line string
	switch status {
	case constants.OrderStatusShipped:
		line = "Your order is on its way."
		if tracking := strings.TrimSpace(input.TrackingNumber); tracking != "" {
			line += fmt.Sprintf(" Tracking number: %s.", tracking)
		}
	case constants.OrderStatusDelivered:
		line = "Your order has been delivered. Loyalty points have been added to your account."
	case constants.OrderStatusCancelled:
		line = "Your order has been cancelled."
	case constants.OrderStatusRefunded:
		line = "Your order has been refunded."
	default:
		line = fmt.Sprintf("Your order status changed to %s.", status)
	}
	body := fmt.Sprintf("Hello %s,\n\n%s\n\nOrder No: %s\nAmount: %s", name, line, input.OrderNo, input.Amount.String())
	return subject, body
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

// dialSMTP 建立连接：use_ssl 为隐式 TLS，use_tls 为 STARTTLS
func dialSMTP(cfg *config.EmailConfig) (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	tlsConfig := &tls.Config{ServerName: cfg.Host}
	if cfg.UseSSL {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return nil, err
		}
		client, err := smtp.NewClient(conn, cfg.Host)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return client, nil
	}
	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, err
	}
	if cfg.UseTLS {
		if err := client.StartTLS(tlsConfig); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

func deliver(client *smtp.Client, auth smtp.Auth, from, to string, msg []byte) error {
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

var recipientRejectedKeywords = []string{
	"no such recipient",
	"no such user",
	"recipient not found",
	"recipient address rejected",
	"invalid recipient",
	"user unknown",
	"unknown user",
	"unknown mailbox",
	"mailbox unavailable",
}

// isEmailRecipientRejected 识别收件人被拒；550 需带收件人相关提示
func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	for _, keyword := range recipientRejectedKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if !strings.Contains(message, "550") {
		return false
	}
	for _, hint := range []string{"recipient", "user", "mailbox", "address", "rcpt"} {
		if strings.Contains(message, hint) {
			return true
		}
	}
	return false
}
