// Package ses sends swap digest emails via AWS SES
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"github.com/r3troseer/SME-loan-transact/internal/models"
	"github.com/r3troseer/SME-loan-transact/internal/services/pricer"
	"github.com/r3troseer/SME-loan-transact/internal/services/swap"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

// EmailAPI is the subset of the SES client the service uses
type EmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Service handles SES email operations
type Service struct {
	client    EmailAPI
	fromEmail string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// SwapDigestParams contains data for a lender's swap digest email
type SwapDigestParams struct {
	LenderName   string
	ContactEmail string
	RunID        string
	TotalSwaps   int
	TopSwaps     []SwapInfo
}

// SwapInfo is one swap as shown in a digest
type SwapInfo struct {
	Counterparty    string
	GiveLoanID      string
	GiveSector      string
	GiveOutstanding string
	GetLoanID       string
	GetSector       string
	GetOutstanding  string
	FitImprovement  int
	InclusionSwap   bool
	NeedsCash       bool
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service sending from fromEmail
func NewService(ctx context.Context, region, fromEmail string) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClient(ses.NewFromConfig(cfg), fromEmail), nil
}

// NewWithClient creates a service over an existing client
func NewWithClient(client EmailAPI, fromEmail string) *Service {
	return &Service{client: client, fromEmail: fromEmail}
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	messageID := aws.ToString(result.MessageId)
	utils.GetLogger().Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", messageID),
	)

	return &SendEmailResult{
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}

// SendSwapDigest sends a lender its swap opportunities
func (s *Service) SendSwapDigest(ctx context.Context, params SwapDigestParams) (*SendEmailResult, error) {
	htmlBody, err := renderSwapDigestHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	return s.SendEmail(ctx, EmailParams{
		To:       params.ContactEmail,
		Subject:  fmt.Sprintf("%s: %d swap opportunities in your portfolio", params.LenderName, params.TotalSwaps),
		HTMLBody: htmlBody,
		TextBody: renderSwapDigestText(params),
	})
}

// BuildSwapDigestParams selects the top swaps for a lender. It returns false when
// the lender has no contact email or no swaps.
func BuildSwapDigestParams(lender *models.Lender, runID string, swaps []models.SwapCandidate, limit int) (SwapDigestParams, bool) {
	if lender.ContactEmail == "" {
		return SwapDigestParams{}, false
	}
	mine := swap.ForLender(swaps, lender.Name)
	if len(mine) == 0 {
		return SwapDigestParams{}, false
	}

	top := mine
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}

	infos := make([]SwapInfo, 0, len(top))
	for _, candidate := range top {
		view := swap.Perspective(candidate, lender.Name)
		infos = append(infos, SwapInfo{
			Counterparty:    view.Counterparty,
			GiveLoanID:      view.YouGive.LoanID,
			GiveSector:      view.YouGive.Sector,
			GiveOutstanding: pricer.FormatPrice(view.YouGive.Outstanding),
			GetLoanID:       view.YouReceive.LoanID,
			GetSector:       view.YouReceive.Sector,
			GetOutstanding:  pricer.FormatPrice(view.YouReceive.Outstanding),
			FitImprovement:  view.TotalFitImprovement,
			InclusionSwap:   view.IsInclusionSwap,
			NeedsCash:       view.NeedsCashAdjustment,
		})
	}

	return SwapDigestParams{
		LenderName:   lender.Name,
		ContactEmail: lender.ContactEmail,
		RunID:        runID,
		TotalSwaps:   len(mine),
		TopSwaps:     infos,
	}, true
}

var swapDigestTemplate = template.Must(template.New("swap_digest").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1f3a5f; color: white; padding: 24px; border-radius: 10px 10px 0 0; }
        .content { background: #f9f9f9; padding: 24px; border-radius: 0 0 10px 10px; }
        .swap-card { background: white; border-radius: 8px; padding: 16px; margin: 12px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .badge { display: inline-block; padding: 3px 10px; border-radius: 12px; font-size: 12px; color: white; }
        .inclusion { background: #28a745; }
        .cash { background: #e0a800; }
        .footer { text-align: center; margin-top: 24px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Swap opportunities for {{.LenderName}}</h1>
        <p>{{.TotalSwaps}} complementary swaps found in run {{.RunID}}</p>
    </div>
    <div class="content">
        {{range .TopSwaps}}
        <div class="swap-card">
            <h3>With {{.Counterparty}} (+{{.FitImprovement}} fit)</h3>
            <p>You give <strong>{{.GiveLoanID}}</strong> ({{.GiveSector}}, {{.GiveOutstanding}})</p>
            <p>You receive <strong>{{.GetLoanID}}</strong> ({{.GetSector}}, {{.GetOutstanding}})</p>
            {{if .InclusionSwap}}<span class="badge inclusion">Inclusion swap</span>{{end}}
            {{if .NeedsCash}}<span class="badge cash">Cash adjustment</span>{{end}}
        </div>
        {{end}}
    </div>
    <div class="footer">
        <p>This email was sent by the SME Loan Exchange</p>
    </div>
</body>
</html>`))

func renderSwapDigestHTML(params SwapDigestParams) (string, error) {
	var buf bytes.Buffer
	if err := swapDigestTemplate.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderSwapDigestText(params SwapDigestParams) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Swap opportunities for %s\n\n", params.LenderName)
	fmt.Fprintf(&buf, "%d complementary swaps found in run %s.\n\n", params.TotalSwaps, params.RunID)

	for i, info := range params.TopSwaps {
		fmt.Fprintf(&buf, "%d. With %s (+%d fit)\n", i+1, info.Counterparty, info.FitImprovement)
		fmt.Fprintf(&buf, "   Give:    %s (%s, %s)\n", info.GiveLoanID, info.GiveSector, info.GiveOutstanding)
		fmt.Fprintf(&buf, "   Receive: %s (%s, %s)\n", info.GetLoanID, info.GetSector, info.GetOutstanding)
		if info.InclusionSwap {
			buf.WriteString("   Inclusion swap\n")
		}
		if info.NeedsCash {
			buf.WriteString("   Needs cash adjustment\n")
		}
		buf.WriteString("\n")
	}

	buf.WriteString("SME Loan Exchange\n")
	return buf.String()
}
