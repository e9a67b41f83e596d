// sendmail はSMTP設定の疎通確認用にテストメールを送信します。
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"portfolio_blog/internal/platform/mail"
)

// sendTimeout はSMTPリレーへの送信1回の上限です。
const sendTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "sendmail <to>",
	Short: "Send a test mail through the configured SMTP relay",
	Long: `Send a plain-text test mail using the MAIL_* settings from the environment or .env.

Examples:
  sendmail you@example.com
  sendmail you@example.com --subject "Relay check"
  sendmail you@example.com --confirm-token abc   # send a confirmation mail instead`,
	Args: cobra.ExactArgs(1),
	RunE: runSendmail,
}

func init() {
	rootCmd.Flags().String("subject", "Test mail", "subject line")
	rootCmd.Flags().String("confirm-token", "", "send a confirmation mail carrying this token")
}

func runSendmail(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "[INFO] .env not found; using system environment variables")
	}
	subject, _ := cmd.Flags().GetString("subject")
	confirmToken, _ := cmd.Flags().GetString("confirm-token")

	mailer := mail.NewSMTPMailer(mail.LoadConfigFromEnv())

	ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
	defer cancel()

	to := args[0]
	var err error
	if confirmToken != "" {
		err = mailer.SendConfirmation(ctx, to, confirmToken)
	} else {
		err = mailer.Send(ctx, mail.Message{
			To:      to,
			Subject: subject,
			Body:    "This is a test message from the portfolio blog.\n",
		})
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "mail sent to %s\n", to)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
