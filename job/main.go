package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cmms-ng/internal/service"
	"cmms-ng/job/report/pm_report"
	cmmsredis "cmms-ng/pkg/redis"
)

var (
	rootCmd = &cobra.Command{
		Use:   "job",
		Short: "CMMS job runner",
		Long:  `CMMS job runner is a CLI tool for running preventive maintenance jobs including work order generation and compliance reports.`,
	}

	// 全局标志
	mysqlDSN  string
	redisAddr string
)

func init() {
	// 全局标志
	rootCmd.PersistentFlags().StringVar(&mysqlDSN, "mysql-dsn", "", "MySQL connection string (default: root:root@tcp(127.0.0.1:3306)/cmms?charset=utf8mb4&parseTime=True&loc=Local)")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "127.0.0.1:6379", "Redis address used for run locks and notifications")

	// 添加子命令
	rootCmd.AddCommand(pmCmd)
	rootCmd.AddCommand(reportCmd)
}

// pm 命令
var pmCmd = &cobra.Command{
	Use:   "pm",
	Short: "Run preventive maintenance jobs",
	Long:  `Run preventive maintenance jobs such as automatic work order generation.`,
}

// pm generate 命令
var pmGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate preventive maintenance work orders",
	Long:  `Scan eligible assets and generate preventive maintenance work orders for overdue and due-soon assets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := initDB(mysqlDSN)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		logger, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		if err := cmmsredis.Init("default", redisAddr, ""); err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		redisHandler := cmmsredis.NewRedisHandler("default")

		pmService := service.NewPMGeneratorService(db, redisHandler, logger)
		summary, err := pmService.GeneratePreventiveWorkOrders(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to generate PM work orders: %w", err)
		}

		log.Printf("PM generation finished: result=%s generated=%d overdue=%d",
			summary.Result, summary.Generated, summary.Overdue)
		return nil
	},
}

// report 命令
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run report jobs",
	Long:  `Run report jobs for maintenance compliance.`,
}

// report pm-report 命令
var (
	outputPath   string
	sendEmail    bool
	smtpHost     string
	smtpPort     int
	smtpUser     string
	smtpPassword string
	fromEmail    string
	toEmails     string

	pmReportCmd = &cobra.Command{
		Use:   "pm-report",
		Short: "Generate PM compliance report",
		Long:  `Generate an excel report of asset maintenance compliance and optionally send a summary email.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := initDB(mysqlDSN)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			generator := pm_report.NewExcelGenerator(db, logger)
			report, err := generator.Run(context.Background(), outputPath)
			if err != nil {
				return fmt.Errorf("failed to generate PM compliance report: %w", err)
			}
			log.Printf("PM compliance report written to %s", outputPath)

			if sendEmail && smtpHost != "" && fromEmail != "" && toEmails != "" {
				recipients := strings.Split(toEmails, ",")
				if len(recipients) == 0 {
					return fmt.Errorf("at least one recipient email is required")
				}

				sender := pm_report.NewComplianceReportSender(
					db,
					smtpHost,
					smtpPort,
					smtpUser,
					smtpPassword,
					fromEmail,
					recipients,
					logger,
				)
				if err := sender.Run(cmd.Context(), report); err != nil {
					return fmt.Errorf("failed to send PM compliance report: %w", err)
				}
			}

			return nil
		},
	}
)

func init() {
	pmCmd.AddCommand(pmGenerateCmd)

	pmReportCmd.Flags().StringVar(&outputPath, "output", "pm_compliance_report.xlsx", "Output path for the excel report")
	pmReportCmd.Flags().BoolVar(&sendEmail, "send-email", false, "Send summary email after generating the report")
	pmReportCmd.Flags().StringVar(&smtpHost, "smtp-host", "", "SMTP server host")
	pmReportCmd.Flags().IntVar(&smtpPort, "smtp-port", 25, "SMTP server port")
	pmReportCmd.Flags().StringVar(&smtpUser, "smtp-user", "", "SMTP user")
	pmReportCmd.Flags().StringVar(&smtpPassword, "smtp-password", "", "SMTP password")
	pmReportCmd.Flags().StringVar(&fromEmail, "from", "", "Sender email address")
	pmReportCmd.Flags().StringVar(&toEmails, "to", "", "Comma separated recipient email addresses")
	reportCmd.AddCommand(pmReportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
