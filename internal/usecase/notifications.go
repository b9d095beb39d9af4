package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
)

// Notification message builders. The texts mirror what borrowers and
// operators see on the telegram channel.

func eligibleMessage(requested, approved decimal.Decimal, percent int64) string {
	return fmt.Sprintf(`🏦 Loan Eligible Notification

✅ Eligibility Check Completed

▫️ Requested Amount: %s $
▫️ Approved Amount: %s $
▫️ Approval Percentage: %d%%

💡 Next Steps:
- Review your loan terms
- Funds will be disbursed within 24h of acceptance

📞 Contact support if you have any questions.

This is an automated message.`, requested.StringFixed(2), approved.StringFixed(2), percent)
}

func notEligibleMessage(requested decimal.Decimal, reason string) string {
	return fmt.Sprintf(`🏦 Loan Not Eligible Notification

❌ Eligibility Check Not Complete

▫️ Requested Amount: %s $

💡 Reason : %s

📞 Contact support if you have any questions.

This is an automated message.`, requested.StringFixed(2), reason)
}

func approvalMessage(requestID, loanID string, amount, total decimal.Decimal, duration int, entry *domain.CreditTransaction) string {
	return fmt.Sprintf(`✅ Loan Approval Notification

Your loan request has been approved!

▫️ Request ID: #%s
▫️ Loan ID: #%s
▫️ Approved Amount: %s $
▫️ Loan Duration: %d months
▫️ Total Repayment Amount: %s $

▫️ Transaction Code: %s
▫️ Transaction Date: %s

Please check your account for details. The repayment schedule has been created and will be available for review.

Thank you for choosing our service.`,
		requestID, loanID, amount.StringFixed(2), duration, total.StringFixed(2),
		entry.TransactionCode, entry.CreatedAt.Format("2006-01-02 15:04:05"))
}

func rejectionMessage(requestID, reason string) string {
	return fmt.Sprintf(`❌ Loan Application Declined

We regret to inform you that your loan request #%s has not been approved.

Reason:
%s

If you have any questions or would like to discuss this decision further, please contact our support team.

Thank you for considering our services.`, requestID, reason)
}

func repaymentMessage(inst *domain.RepaymentInstallment, entry *domain.CreditTransaction) string {
	statusLabel := "Paid (On Time)"
	if inst.Status == domain.InstallmentStatusPaidLate {
		statusLabel = "Paid (Late)"
	}

	return fmt.Sprintf(`💰 Loan Repayment Alert

▫️ Loan ID: %s
▫️ Code: %s
▫️ Amount: %s
▫️ Type: %s
▫️ Description: %s
▫️ Date Paid: %s
▫️ Status: %s

Thank you for your payment.`,
		inst.LoanID, entry.TransactionCode, entry.FormattedAmount(), entry.Kind.Label(),
		entry.Description, inst.PaidDate.Format("2006-01-02 15:04:05"), statusLabel)
}

func lateAlertMessage(inst *domain.RepaymentInstallment) string {
	return fmt.Sprintf(`⚠️ Late Repayment Alert
Installment ID: #%s
Amount Due: USD %s
Original Due Date: %s
Your repayment is overdue. Please make the payment as soon as possible to avoid penalties.

This is an automated reminder.`,
		inst.ID, inst.EmiAmount.StringFixed(2), inst.DueDate.Format("Jan 2, 2006 15:04"))
}

func upcomingReminderMessage(inst *domain.RepaymentInstallment) string {
	return fmt.Sprintf(`⏰ Upcoming Repayment Reminder
Installment ID: #%s
Amount Due: USD %s
Due Date: %s
Please ensure sufficient funds are available in your account.

This is an automated reminder.`,
		inst.ID, inst.EmiAmount.StringFixed(2), inst.DueDate.Format("Jan 2, 2006 15:04"))
}

func ledgerEntryMessage(entry *domain.CreditTransaction) string {
	return fmt.Sprintf(`💰 Credit Transaction Alert

▫️ Code: %s
▫️ Amount: %s
▫️ Type: %s
▫️ Description: %s
▫️ Previous Balance: %s
▫️ New Balance: %s
▫️ User ID: %s
▫️ Reference: %s
▫️ Date: %s`,
		entry.TransactionCode, entry.FormattedAmount(), entry.Kind.Label(), entry.Description,
		entry.BalanceBefore.StringFixed(2), entry.BalanceAfter.StringFixed(2),
		entry.UserID, entry.Reference, entry.CreatedAt.Format("2006-01-02 15:04:05"))
}

func operatorBalanceAlertMessage(req *domain.LoanRequest) string {
	return fmt.Sprintf(`⚠️ Loan Request Amount Exceeds Available Credit Balance

Please note that the requested loan amount of %s $
exceeds the available credit balance.

▫️ User ID: %s
▫️ Request Loan ID: %s

Please review the credit balance accordingly.`,
		req.LoanAmount.StringFixed(2), req.UserID, req.ID)
}
