package pm_report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed template.html
var templateFS embed.FS

// ComplianceReportSender 发送PM合规汇总邮件
type ComplianceReportSender struct {
	db           *gorm.DB
	smtpHost     string
	smtpPort     int
	smtpUser     string
	smtpPassword string
	fromEmail    string
	toEmails     []string
	logger       *zap.Logger
}

// NewComplianceReportSender 创建合规邮件发送器
func NewComplianceReportSender(db *gorm.DB, smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string, toEmails []string, logger *zap.Logger) *ComplianceReportSender {
	return &ComplianceReportSender{
		db:           db,
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    fromEmail,
		toEmails:     toEmails,
		logger:       logger,
	}
}

// Run 渲染并发送合规汇总邮件
func (s *ComplianceReportSender) Run(ctx context.Context, report *ComplianceReport) error {
	body, err := s.generateEmailContent(report)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("PM合规报告 - %s", report.GeneratedAt)
	if err := s.sendEmail(subject, body); err != nil {
		return err
	}

	s.logger.Info("PM compliance report email sent",
		zap.Strings("recipients", s.toEmails))
	return nil
}

// generateEmailContent 使用模板渲染邮件正文
func (s *ComplianceReportSender) generateEmailContent(report *ComplianceReport) (string, error) {
	tmpl, err := template.New("pmReport").Funcs(sprig.HtmlFuncMap()).ParseFS(templateFS, "template.html")
	if err != nil {
		return "", fmt.Errorf("failed to parse email template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "template.html", report); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return buf.String(), nil
}

// sendEmail 通过SMTP发送HTML邮件
func (s *ComplianceReportSender) sendEmail(subject, body string) error {
	var auth smtp.Auth
	if s.smtpUser != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	}
	addr := fmt.Sprintf("%s:%d", s.smtpHost, s.smtpPort)

	headers := []string{
		fmt.Sprintf("From: %s", s.fromEmail),
		fmt.Sprintf("To: %s", strings.Join(s.toEmails, ",")),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	if err := smtp.SendMail(addr, auth, s.fromEmail, s.toEmails, []byte(msg)); err != nil {
		return fmt.Errorf("smtp.SendMail failed: %w", err)
	}
	return nil
}
