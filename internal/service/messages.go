package service

import (
	"fmt"

	"github.com/regioninvest/portal/internal/domain"
)

const messageDateLayout = "02.01.2006"

func taskAssignedMessage(task *domain.Task) string {
	if task.DueDate != nil {
		return fmt.Sprintf("You have been assigned the task %q, due %s.",
			task.Title, task.DueDate.Format(messageDateLayout))
	}
	return fmt.Sprintf("You have been assigned the task %q.", task.Title)
}

func completionSubmittedMessage(task *domain.Task, documents, photos int) string {
	return fmt.Sprintf("Completion submitted for task %q: %d documents, %d photos.",
		task.Title, documents, photos)
}

func completionApprovedMessage(task *domain.Task) string {
	return fmt.Sprintf("Your completion of task %q was approved.", task.Title)
}

func completionRejectedMessage(task *domain.Task, reviewComment *string) string {
	if reviewComment != nil && *reviewComment != "" {
		return fmt.Sprintf("Your completion of task %q was rejected: %s", task.Title, *reviewComment)
	}
	return fmt.Sprintf("Your completion of task %q was rejected.", task.Title)
}

func taskOverdueMessage(task *domain.Task, projectName string, daysOverdue int) string {
	return fmt.Sprintf("Task %q in project %q was due %s and is %d day(s) overdue.",
		task.Title, projectName, task.DueDate.Format(messageDateLayout), daysOverdue)
}
