package aggregate

import "github.com/studio-desk/models"

// QuoteStatusUnset labels assignments whose quote status was never set.
const QuoteStatusUnset = "Unset"

// TaskStatusCounts counts tasks per status. Every status in the cycle is
// present in the result, even when zero.
func TaskStatusCounts(tasks []models.Task) map[models.TaskStatus]int {
	counts := make(map[models.TaskStatus]int, len(models.TaskStatusCycle))
	for _, status := range models.TaskStatusCycle {
		counts[status] = 0
	}
	for _, task := range tasks {
		counts[task.Status]++
	}
	return counts
}

// ProjectStatusCounts groups projects by status.
func ProjectStatusCounts(projects []models.Project) map[models.ProjectStatus]int {
	counts := make(map[models.ProjectStatus]int, len(models.ProjectStatuses))
	for _, status := range models.ProjectStatuses {
		counts[status] = 0
	}
	for _, p := range projects {
		counts[p.Status]++
	}
	return counts
}

// QuoteStatusCounts groups assignments by quote status, using
// QuoteStatusUnset for assignments without one.
func QuoteStatusCounts(assignments []models.ProjectConsultant) map[string]int {
	counts := map[string]int{
		string(models.QuoteStatusPending):  0,
		string(models.QuoteStatusApproved): 0,
		QuoteStatusUnset:                   0,
	}
	for _, a := range assignments {
		if a.QuoteStatus == nil {
			counts[QuoteStatusUnset]++
			continue
		}
		counts[string(*a.QuoteStatus)]++
	}
	return counts
}

// InvoiceStatusCounts groups invoices by payment status.
func InvoiceStatusCounts(invoices []models.Invoice) map[models.InvoiceStatus]int {
	counts := map[models.InvoiceStatus]int{
		models.InvoiceStatusPending: 0,
		models.InvoiceStatusPaid:    0,
	}
	for _, inv := range invoices {
		counts[inv.Status]++
	}
	return counts
}
