// Package mailer sends best-effort email notifications over SMTP.
package mailer

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"aurora-backend/models"

	"gopkg.in/gomail.v2"
)

// Mailer sends notification emails. When no credentials are configured it
// stays constructed but disabled, and sends fail with an error the caller is
// expected to log and drop.
type Mailer struct {
	dialer      *gomail.Dialer
	from        string
	appName     string
	frontendURL string
}

// NewFromEnv builds a mailer from EMAIL_HOST/EMAIL_PORT/EMAIL_USER/
// EMAIL_PASS plus APP_NAME and FRONTEND_URL. Missing credentials disable
// sending but never block startup.
func NewFromEnv() *Mailer {
	m := &Mailer{
		appName:     os.Getenv("APP_NAME"),
		frontendURL: os.Getenv("FRONTEND_URL"),
	}
	if m.appName == "" {
		m.appName = "AURORA INTEL"
	}
	if m.frontendURL == "" {
		m.frontendURL = "http://localhost:5173"
	}

	user := os.Getenv("EMAIL_USER")
	pass := os.Getenv("EMAIL_PASS")
	if user == "" || pass == "" {
		log.Println("Warning: email credentials not set, email notifications disabled")
		return m
	}

	host := os.Getenv("EMAIL_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := 587
	if p := os.Getenv("EMAIL_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			port = parsed
		}
	}

	m.dialer = gomail.NewDialer(host, port, user, pass)
	m.from = fmt.Sprintf("%s <%s>", m.appName, user)
	log.Println("Mail transport configured")
	return m
}

// SendTagNotification emails the tagged recipient of an experience post
func (m *Mailer) SendTagNotification(to string, exp *models.Experience) error {
	if m.dialer == nil {
		return errors.New("mail transport not configured")
	}

	subject := fmt.Sprintf("%s shared an experience with you on %s!", exp.UserName, m.appName)

	body := "Hi there,\n\n"
	body += fmt.Sprintf("%s (%s) shared an experience on %s and mentioned you:\n\n", exp.UserName, exp.UserEmail, m.appName)
	body += fmt.Sprintf("%q\n\n", exp.Experience)
	if exp.MessageToRecipient != nil {
		body += fmt.Sprintf("They added this message for you:\n%q\n\n", *exp.MessageToRecipient)
	}
	body += fmt.Sprintf("You can view all experiences here: %s/blog\n\n", m.frontendURL)
	body += fmt.Sprintf("Thanks,\nThe %s Team", m.appName)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Printf("Tag notification sent to %s", to)
	return nil
}
