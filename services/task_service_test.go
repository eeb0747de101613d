package services

import (
	"errors"
	"testing"
	"time"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/models"
)

func TestAdvanceTaskWrapsAfterThreeSteps(t *testing.T) {
	env := newTestEnv(t)
	staff := env.user(t, "staff@studio.test", models.UserTypeStaff, false)
	project := env.project(t, staff, dto.CreateProjectRequest{})
	consultant := env.consultant(t, staff, "ada", nil)
	toggled, err := env.svc.Assignments.Toggle(env.ctx, staff, project.ID, consultant.ID)
	if err != nil {
		t.Fatal(err)
	}

	task, err := env.svc.Tasks.CreateTask(env.ctx, staff, toggled.Assignment.ID, dto.TaskRequest{Title: "Site visit"})
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != models.TaskStatusPendingInput {
		t.Fatalf("new task status %q", task.Status)
	}

	want := []models.TaskStatus{models.TaskStatusInProgress, models.TaskStatusCompleted, models.TaskStatusPendingInput}
	for i, status := range want {
		advanced, err := env.svc.Tasks.AdvanceTask(env.ctx, staff, task.ID)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if advanced.Status != status {
			t.Fatalf("advance %d: got %q, want %q", i, advanced.Status, status)
		}
	}

	tasks, err := env.svc.Tasks.ListTasks(env.ctx, staff, toggled.Assignment.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].Status != models.TaskStatusPendingInput {
		t.Fatalf("unexpected task list %+v", tasks)
	}
}

func TestClientReadsButCannotWriteWork(t *testing.T) {
	env := newTestEnv(t)
	staff := env.user(t, "staff@studio.test", models.UserTypeStaff, false)
	client := env.user(t, "client@acme.test", models.UserTypeClient, false)
	outsider := env.user(t, "outsider@acme.test", models.UserTypeClient, false)
	project := env.project(t, staff, dto.CreateProjectRequest{AssignedClientID: &client.UserID})
	consultant := env.consultant(t, staff, "ada", nil)
	toggled, err := env.svc.Assignments.Toggle(env.ctx, staff, project.ID, consultant.ID)
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-48 * time.Hour)
	task, err := env.svc.Tasks.CreateTask(env.ctx, staff, toggled.Assignment.ID, dto.TaskRequest{
		Title:   "Drawings",
		DueDate: &dto.Date{Time: past},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !task.IsOverdue {
		t.Fatal("task due two days ago should be overdue")
	}

	if _, err := env.svc.Tasks.ListTasks(env.ctx, client, toggled.Assignment.ID); err != nil {
		t.Fatalf("assigned client should read tasks: %v", err)
	}
	if _, err := env.svc.Tasks.ListTasks(env.ctx, outsider, toggled.Assignment.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider: expected forbidden, got %v", err)
	}
	if _, err := env.svc.Tasks.AdvanceTask(env.ctx, client, task.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("client advance: expected forbidden, got %v", err)
	}
	if _, err := env.svc.Invoices.CreateInvoice(env.ctx, client, toggled.Assignment.ID, dto.InvoiceRequest{
		Amount:      ptr(1.0),
		InvoiceDate: &dto.Date{Time: time.Now()},
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("client invoice: expected forbidden, got %v", err)
	}
}

func TestMarkPaidDefaultsToToday(t *testing.T) {
	env := newTestEnv(t)
	staff := env.user(t, "staff@studio.test", models.UserTypeStaff, false)
	project := env.project(t, staff, dto.CreateProjectRequest{})
	consultant := env.consultant(t, staff, "ada", nil)
	toggled, err := env.svc.Assignments.Toggle(env.ctx, staff, project.ID, consultant.ID)
	if err != nil {
		t.Fatal(err)
	}

	fixed := time.Date(2024, 6, 14, 16, 30, 0, 0, time.UTC)
	env.svc.Invoices.now = func() time.Time { return fixed }

	invoice, err := env.svc.Invoices.CreateInvoice(env.ctx, staff, toggled.Assignment.ID, dto.InvoiceRequest{
		Amount:        ptr(1200.0),
		InvoiceDate:   &dto.Date{Time: fixed.AddDate(0, 0, -10)},
		InvoiceNumber: "INV-7",
	})
	if err != nil {
		t.Fatal(err)
	}
	if invoice.Status != models.InvoiceStatusPending {
		t.Fatalf("new invoice status %q", invoice.Status)
	}

	paid, err := env.svc.Invoices.MarkPaid(env.ctx, staff, invoice.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if paid.Status != models.InvoiceStatusPaid || paid.PaymentDate == nil {
		t.Fatalf("invoice not paid: %+v", paid)
	}
	if got := paid.PaymentDate.Format("2006-01-02"); got != "2024-06-14" {
		t.Fatalf("payment date %s, want 2024-06-14", got)
	}

	invoices, err := env.svc.Invoices.ListInvoices(env.ctx, staff, toggled.Assignment.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(invoices) != 1 || !invoices[0].IsPaid() {
		t.Fatalf("listing not refreshed: %+v", invoices)
	}
}
