package shared

// Finance and reporting permissions declared for access control.
const (
	PermExpenseView = "expense.view"
	PermExpenseEdit = "expense.edit"

	PermDocumentView   = "document.view"
	PermDocumentUpload = "document.upload"

	PermReportView = "report.view"
)

// FinanceScopes lists all permissions related to the finance module.
func FinanceScopes() []string {
	return []string{
		PermExpenseView,
		PermExpenseEdit,
		PermDocumentView,
		PermDocumentUpload,
		PermReportView,
	}
}
